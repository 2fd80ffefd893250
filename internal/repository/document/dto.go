package document

import (
	"strconv"

	"github.com/kailas-cloud/docdex/internal/domain"
)

const contentField = "content"

// buildHashFields converts a document into a flat map[string]string for HSET.
func buildHashFields(doc *domain.Document) map[string]string {
	m := make(map[string]string, 1+len(doc.Tags)+len(doc.Numerics))
	m[contentField] = doc.Content
	for k, v := range doc.Tags {
		m[k] = v
	}
	for k, v := range doc.Numerics {
		m[k] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return m
}

// parseHashFields converts a flat hash map back into a document.
// Values that parse as floats are treated as numeric fields.
func parseHashFields(id string, m map[string]string) domain.Document {
	doc := domain.Document{
		ID:       id,
		Tags:     make(map[string]string),
		Numerics: make(map[string]float64),
	}
	for k, v := range m {
		if k == contentField {
			doc.Content = v
			continue
		}
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			doc.Numerics[k] = f
		} else {
			doc.Tags[k] = v
		}
	}
	return doc
}
