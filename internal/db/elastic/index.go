package elastic

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/kailas-cloud/docdex/internal/db"
)

// CreateIndex creates an index with mappings derived from the definition.
// Text fields become text, tag fields keyword, numeric fields double.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if err := def.Validate(); err != nil {
		return err
	}

	body, err := json.Marshal(buildMappings(def))
	if err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}

	name := indexName(def.Name)
	res, err := s.es.Indices.Create(
		name,
		s.es.Indices.Create.WithContext(ctx),
		s.es.Indices.Create.WithBody(strings.NewReader(string(body))),
	)
	if err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode == 400 {
		// resource_already_exists_exception comes back as a 400
		raw, readErr := readBody(res)
		if readErr == nil && strings.Contains(string(raw), "resource_already_exists_exception") {
			return db.ErrIndexExists
		}
		return &db.Error{Op: db.OpCreateIndex, Err: errFromBody(res.Status(), raw)}
	}
	if res.IsError() {
		return decodeError(db.OpCreateIndex, res)
	}
	return nil
}

// DropIndex removes an index by name.
func (s *Store) DropIndex(ctx context.Context, name string) error {
	res, err := s.es.Indices.Delete(
		[]string{indexName(name)},
		s.es.Indices.Delete.WithContext(ctx),
	)
	if err != nil {
		return &db.Error{Op: db.OpDropIndex, Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		return db.ErrIndexNotFound
	}
	if res.IsError() {
		return decodeError(db.OpDropIndex, res)
	}
	return nil
}

// IndexExists probes index existence via a HEAD request.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	res, err := s.es.Indices.Exists(
		[]string{indexName(name)},
		s.es.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return false, &db.Error{Op: db.OpIndexInfo, Err: err}
	}
	defer res.Body.Close()

	return res.StatusCode == 200, nil
}

func buildMappings(def *db.IndexDefinition) map[string]any {
	props := make(map[string]any, len(def.Fields))
	for i := range def.Fields {
		f := &def.Fields[i]
		name := f.Name
		if f.Alias != "" {
			name = f.Alias
		}
		props[name] = fieldMapping(f)
	}
	return map[string]any{
		"mappings": map[string]any{
			"properties": props,
		},
	}
}

func fieldMapping(f *db.IndexField) map[string]any {
	switch f.Type {
	case db.IndexFieldText:
		m := map[string]any{"type": "text"}
		if f.TextWeight > 0 {
			m["boost"] = f.TextWeight
		}
		return m
	case db.IndexFieldTag:
		return map[string]any{"type": "keyword"}
	case db.IndexFieldNumeric:
		return map[string]any{"type": "double"}
	default:
		return map[string]any{"type": "keyword"}
	}
}
