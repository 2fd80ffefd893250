package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v7/esapi"
	"github.com/tidwall/gjson"

	"github.com/kailas-cloud/docdex/internal/db"
)

// HSet stores the fields as a document, keyed per the index/id mapping.
func (s *Store) HSet(ctx context.Context, key string, fields map[string]string) error {
	index, id := keyToIndexID(key)

	body, err := json.Marshal(fields)
	if err != nil {
		return &db.Error{Op: db.OpHSet, Err: err}
	}

	req := esapi.IndexRequest{
		Index:      index,
		DocumentID: id,
		Body:       bytes.NewReader(body),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, s.es)
	if err != nil {
		return &db.Error{Op: db.OpHSet, Err: err}
	}
	defer res.Body.Close()

	if res.IsError() {
		return decodeError(db.OpHSet, res)
	}
	return nil
}

// HSetMulti stores multiple documents with a single bulk request.
func (s *Store) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	if len(items) == 0 {
		return nil
	}

	var buf bytes.Buffer
	for _, item := range items {
		index, id := keyToIndexID(item.Key)
		meta := fmt.Sprintf(`{"index":{"_index":%q,"_id":%q}}`, index, id)
		buf.WriteString(meta)
		buf.WriteByte('\n')

		data, err := json.Marshal(item.Fields)
		if err != nil {
			return &db.Error{Op: db.OpHSet, Err: fmt.Errorf("key %s: %w", item.Key, err)}
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}

	res, err := s.es.Bulk(bytes.NewReader(buf.Bytes()), s.es.Bulk.WithContext(ctx), s.es.Bulk.WithRefresh("true"))
	if err != nil {
		return &db.Error{Op: db.OpHSet, Err: err}
	}
	defer res.Body.Close()

	if res.IsError() {
		return decodeError(db.OpHSet, res)
	}

	body, err := readBody(res)
	if err != nil {
		return &db.Error{Op: db.OpHSet, Err: err}
	}
	if gjson.GetBytes(body, "errors").Bool() {
		var firstErr string
		gjson.GetBytes(body, "items").ForEach(func(_, item gjson.Result) bool {
			if reason := item.Get("index.error.reason"); reason.Exists() {
				firstErr = reason.String()
				return false
			}
			return true
		})
		return &db.Error{Op: db.OpHSet, Err: fmt.Errorf("bulk partially failed: %s", firstErr)}
	}
	return nil
}

// HGetAll fetches a document's fields by key.
func (s *Store) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	index, id := keyToIndexID(key)

	res, err := s.es.Get(index, id, s.es.Get.WithContext(ctx))
	if err != nil {
		return nil, &db.Error{Op: db.OpHGetAll, Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		return map[string]string{}, nil
	}
	if res.IsError() {
		return nil, decodeError(db.OpHGetAll, res)
	}

	body, err := readBody(res)
	if err != nil {
		return nil, &db.Error{Op: db.OpHGetAll, Err: err}
	}
	return sourceToFields(gjson.GetBytes(body, "_source")), nil
}

// HGetAllMulti fetches multiple documents in a single mget round-trip.
func (s *Store) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	docs := make([]map[string]string, 0, len(keys))
	for _, key := range keys {
		index, id := keyToIndexID(key)
		docs = append(docs, map[string]string{"_index": index, "_id": id})
	}
	body, err := json.Marshal(map[string]any{"docs": docs})
	if err != nil {
		return nil, &db.Error{Op: db.OpHGetAll, Err: err}
	}

	res, err := s.es.Mget(bytes.NewReader(body), s.es.Mget.WithContext(ctx))
	if err != nil {
		return nil, &db.Error{Op: db.OpHGetAll, Err: err}
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, decodeError(db.OpHGetAll, res)
	}

	raw, err := readBody(res)
	if err != nil {
		return nil, &db.Error{Op: db.OpHGetAll, Err: err}
	}

	out := make([]map[string]string, 0, len(keys))
	gjson.GetBytes(raw, "docs").ForEach(func(_, doc gjson.Result) bool {
		out = append(out, sourceToFields(doc.Get("_source")))
		return true
	})
	return out, nil
}

// Del removes a document by key. Missing documents are not an error.
func (s *Store) Del(ctx context.Context, key string) error {
	index, id := keyToIndexID(key)

	req := esapi.DeleteRequest{
		Index:      index,
		DocumentID: id,
		Refresh:    "true",
	}
	res, err := req.Do(ctx, s.es)
	if err != nil {
		return &db.Error{Op: db.OpDel, Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		return nil
	}
	if res.IsError() {
		return decodeError(db.OpDel, res)
	}
	return nil
}

// Exists checks whether a document exists.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	index, id := keyToIndexID(key)

	res, err := s.es.Exists(index, id, s.es.Exists.WithContext(ctx))
	if err != nil {
		return false, &db.Error{Op: db.OpExists, Err: err}
	}
	defer res.Body.Close()

	return res.StatusCode == 200, nil
}

// Scan lists document keys matching the pattern's index, via match_all.
func (s *Store) Scan(ctx context.Context, pattern string) ([]string, error) {
	index := indexForPattern(pattern)
	prefix := strings.TrimSuffix(pattern, "*")

	res, err := s.es.Search(
		s.es.Search.WithContext(ctx),
		s.es.Search.WithIndex(index),
		s.es.Search.WithBody(strings.NewReader(`{"query":{"match_all":{}},"_source":false,"size":10000}`)),
	)
	if err != nil {
		return nil, &db.Error{Op: db.OpScan, Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		return nil, nil
	}
	if res.IsError() {
		return nil, decodeError(db.OpScan, res)
	}

	body, err := readBody(res)
	if err != nil {
		return nil, &db.Error{Op: db.OpScan, Err: err}
	}

	var keys []string
	gjson.GetBytes(body, "hits.hits").ForEach(func(_, hit gjson.Result) bool {
		keys = append(keys, prefix+hit.Get("_id").String())
		return true
	})
	return keys, nil
}

func sourceToFields(source gjson.Result) map[string]string {
	fields := make(map[string]string)
	source.ForEach(func(k, v gjson.Result) bool {
		fields[k.String()] = v.String()
		return true
	})
	return fields
}
