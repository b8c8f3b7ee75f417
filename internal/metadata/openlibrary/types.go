// Package openlibrary provides a client for the Open Library book search API.
package openlibrary

// Book is a search result reduced to the fields the catalog stores.
type Book struct {
	ISBN    string `json:"isbn"`
	Title   string `json:"title"`
	Author  string `json:"author"`
	Year    *int   `json:"year,omitempty"`
	Pages   *int   `json:"pages,omitempty"`
	CoverID *int64 `json:"coverid,omitempty"`
}

// searchResponse is the raw search.json payload.
type searchResponse struct {
	NumFound int         `json:"numFound"`
	Docs     []searchDoc `json:"docs"`
}

type searchDoc struct {
	Key                 string   `json:"key"`
	Title               string   `json:"title"`
	AuthorName          []string `json:"author_name"`
	FirstPublishYear    *int     `json:"first_publish_year"`
	CoverI              *int64   `json:"cover_i"`
	ISBN                []string `json:"isbn"`
	NumberOfPagesMedian *int     `json:"number_of_pages_median"`
}
