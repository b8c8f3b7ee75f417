package domain

// BookDetails is a book page as seen by a particular viewer.
// Reviews never contains UserReview; Aggregate always counts it when public.
type BookDetails struct {
	Book       Book              `json:"details"`
	Reviews    []*AuthoredReview `json:"reviews"`
	Aggregate  Aggregate         `json:"aggregate"`
	UserReview *Review           `json:"userReview"`
}
