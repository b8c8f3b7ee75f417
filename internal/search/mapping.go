package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the mapping for book documents: English analysis on title and
// author, exact matching on ISBN, numeric year and creation time.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	doc := bleve.NewDocumentMapping()

	title := bleve.NewTextFieldMapping()
	title.Analyzer = en.AnalyzerName
	title.Store = true
	title.IncludeTermVectors = true
	doc.AddFieldMappingsAt("title", title)

	author := bleve.NewTextFieldMapping()
	author.Analyzer = en.AnalyzerName
	author.Store = true
	author.IncludeTermVectors = true
	doc.AddFieldMappingsAt("author", author)

	isbn := bleve.NewTextFieldMapping()
	isbn.Analyzer = keyword.Name
	isbn.Store = true
	doc.AddFieldMappingsAt("isbn", isbn)

	year := bleve.NewNumericFieldMapping()
	year.Store = true
	doc.AddFieldMappingsAt("publish_year", year)

	created := bleve.NewNumericFieldMapping()
	created.Store = true
	doc.AddFieldMappingsAt("created_at", created)

	indexMapping.AddDocumentMapping("_default", doc)
	return indexMapping
}
