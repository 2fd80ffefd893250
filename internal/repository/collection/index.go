package collection

import (
	"fmt"

	"github.com/kailas-cloud/docdex/internal/db"
	"github.com/kailas-cloud/docdex/internal/domain/collection/field"
)

// buildIndex creates an IndexDefinition from domain collection fields.
// Every collection carries a TEXT field named content for the document body.
func buildIndex(name string, fields []field.Field) (*db.IndexDefinition, error) {
	def := &db.IndexDefinition{
		Name:        indexName(name),
		StorageType: db.StorageHash,
		Prefixes:    []string{collectionPrefix(name)},
		Fields:      make([]db.IndexField, 0, len(fields)+1),
	}

	for _, f := range fields {
		var fieldType db.IndexFieldType
		switch f.FieldType() {
		case field.Text:
			fieldType = db.IndexFieldText
		case field.Tag:
			fieldType = db.IndexFieldTag
		case field.Numeric:
			fieldType = db.IndexFieldNumeric
		default:
			return nil, fmt.Errorf("unknown field type: %s", f.FieldType())
		}

		def.Fields = append(def.Fields, db.IndexField{
			Name: f.Name(),
			Type: fieldType,
		})
	}

	def.Fields = append(def.Fields, db.IndexField{Name: "content", Type: db.IndexFieldText})

	return def, nil
}
