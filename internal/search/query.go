package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Params configures a catalog search.
type Params struct {
	Query   string
	MinYear int
	MaxYear int
	Limit   int
	Offset  int
}

// Result is one page of search hits ordered by relevance.
type Result struct {
	Total uint64
	Hits  []Hit
}

// Hit is a matched book.
type Hit struct {
	ISBN   string
	Score  float64
	Title  string
	Author string
}

// Search runs a relevance-ranked query over titles, authors and ISBNs.
func (s *SearchIndex) Search(ctx context.Context, params Params) (*Result, error) {
	if params.Limit <= 0 {
		params.Limit = 20
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	req := bleve.NewSearchRequestOptions(buildQuery(params), params.Limit, params.Offset, false)
	req.Fields = []string{"isbn", "title", "author"}
	req.SortBy([]string{"-_score", "isbn"})

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	out := &Result{Total: res.Total, Hits: make([]Hit, 0, len(res.Hits))}
	for _, h := range res.Hits {
		hit := Hit{ISBN: h.ID, Score: h.Score}
		if v, ok := h.Fields["title"].(string); ok {
			hit.Title = v
		}
		if v, ok := h.Fields["author"].(string); ok {
			hit.Author = v
		}
		out.Hits = append(out.Hits, hit)
	}
	return out, nil
}

func buildQuery(params Params) query.Query {
	var must []query.Query

	if q := strings.TrimSpace(params.Query); q != "" {
		title := bleve.NewMatchQuery(q)
		title.SetField("title")
		title.SetBoost(3.0)

		author := bleve.NewMatchQuery(q)
		author.SetField("author")
		author.SetBoost(1.5)

		isbn := bleve.NewTermQuery(q)
		isbn.SetField("isbn")
		isbn.SetBoost(5.0)

		fuzzy := bleve.NewFuzzyQuery(strings.ToLower(q))
		fuzzy.SetField("title")
		fuzzy.SetFuzziness(1)
		fuzzy.SetBoost(0.8)

		text := []query.Query{title, author, isbn, fuzzy}

		if len(q) >= 2 {
			prefix := bleve.NewPrefixQuery(strings.ToLower(q))
			prefix.SetField("title")
			prefix.SetBoost(0.5)
			text = append(text, prefix)
		}

		must = append(must, bleve.NewDisjunctionQuery(text...))
	}

	if params.MinYear > 0 || params.MaxYear > 0 {
		lo := float64(params.MinYear)
		hi := float64(params.MaxYear)
		if params.MaxYear == 0 {
			hi = 9999
		}
		inclusive := true
		yr := bleve.NewNumericRangeInclusiveQuery(&lo, &hi, &inclusive, &inclusive)
		yr.SetField("publish_year")
		must = append(must, yr)
	}

	switch len(must) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return must[0]
	default:
		return bleve.NewConjunctionQuery(must...)
	}
}
