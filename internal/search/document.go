// Package search maintains a Bleve full-text index over the local book catalog.
package search

import (
	"github.com/shelfnotes/shelfnotes-server/internal/domain"
)

// BookDocument is the indexed form of a catalog book. The ISBN doubles as the document ID.
type BookDocument struct {
	ISBN        string
	Title       string
	Author      string
	PublishYear int
	CreatedAt   int64
}

// NewBookDocument builds the index document for a book.
func NewBookDocument(b *domain.Book) *BookDocument {
	doc := &BookDocument{
		ISBN:      b.ISBN,
		Title:     b.Title,
		Author:    b.Author,
		CreatedAt: b.CreatedAt.UnixMilli(),
	}
	if b.PublishYear != nil {
		doc.PublishYear = *b.PublishYear
	}
	return doc
}

// ToMap converts the document to a map whose keys match the index mapping.
// Bleve would otherwise use the capitalized struct field names.
func (d *BookDocument) ToMap() map[string]any {
	m := map[string]any{
		"isbn":       d.ISBN,
		"title":      d.Title,
		"created_at": d.CreatedAt,
	}
	if d.Author != "" {
		m["author"] = d.Author
	}
	if d.PublishYear != 0 {
		m["publish_year"] = d.PublishYear
	}
	return m
}
