package openlibrary

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	searchPath    = "/search.json"
	searchFields  = "key,title,author_name,first_publish_year,cover_i,isbn,number_of_pages_median"
	searchLimit   = 20
	unknownAuthor = "Unknown"
)

// Search queries Open Library and returns results that carry an ISBN.
func (c *Client) Search(ctx context.Context, query string) ([]Book, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &Error{Op: "search", Err: ErrEmptyQuery}
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("fields", searchFields)
	params.Set("limit", strconv.Itoa(searchLimit))

	body, err := c.doRequest(ctx, searchPath, params)
	if err != nil {
		return nil, &Error{Op: "search", Query: query, Err: err}
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &Error{Op: "search", Query: query, Err: fmt.Errorf("%w: %w", ErrBadResponse, err)}
	}

	c.logger.Debug("openlibrary search results",
		"query", query,
		"found", resp.NumFound,
		"returned", len(resp.Docs),
	)

	return convertDocs(resp.Docs), nil
}

func convertDocs(docs []searchDoc) []Book {
	books := make([]Book, 0, len(docs))
	for i := range docs {
		d := &docs[i]
		if len(d.ISBN) == 0 || d.ISBN[0] == "" {
			continue
		}

		author := unknownAuthor
		if len(d.AuthorName) > 0 {
			author = strings.Join(d.AuthorName, ", ")
		}

		books = append(books, Book{
			ISBN:    d.ISBN[0],
			Title:   d.Title,
			Author:  author,
			Year:    d.FirstPublishYear,
			Pages:   d.NumberOfPagesMedian,
			CoverID: d.CoverI,
		})
	}
	return books
}
