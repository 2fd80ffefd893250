package elastic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v7"
	"github.com/elastic/go-elasticsearch/v7/esapi"

	"github.com/kailas-cloud/docdex/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Config holds connection parameters for an Elasticsearch store.
type Config struct {
	Addrs    []string
	Username string
	Password string
}

// Store implements db.Store against Elasticsearch 7.x.
//
// Hash keys map onto the cluster as index plus document id: the segment after
// the last colon is the document id, everything before it (lowercased, colons
// replaced) is the index name.
type Store struct {
	es *elasticsearch.Client
}

// NewStore creates an Elasticsearch store.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addrs,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Store{es: es}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	res, err := s.es.Ping(s.es.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("ping: %s", res.Status())
	}
	return nil
}

// Close is a no-op: the underlying transport pools its own connections.
func (s *Store) Close() {}

// WaitForReady polls Ping until the cluster responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for database: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// indexName maps a logical index name onto a legal Elasticsearch index name.
func indexName(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, ":", "-"))
}

// keyToIndexID splits a hash key into index name and document id.
func keyToIndexID(key string) (index, id string) {
	i := strings.LastIndex(key, ":")
	if i < 0 {
		return strings.ToLower(key), key
	}
	index = strings.ToLower(strings.ReplaceAll(key[:i], ":", "-"))
	return index, key[i+1:]
}

// indexForPattern maps a key pattern like "docdex:articles:*" to its index name.
func indexForPattern(pattern string) string {
	trimmed := strings.TrimSuffix(pattern, "*")
	trimmed = strings.TrimSuffix(trimmed, ":")
	return strings.ToLower(strings.ReplaceAll(trimmed, ":", "-"))
}

// decodeError extracts the error type and reason from an esapi error response.
func decodeError(op string, res *esapi.Response) error {
	var e map[string]any
	if err := json.NewDecoder(res.Body).Decode(&e); err != nil {
		return &db.Error{Op: op, Err: fmt.Errorf("[%s] unreadable error body: %w", res.Status(), err)}
	}
	if em, ok := e["error"].(map[string]any); ok {
		return &db.Error{Op: op, Err: fmt.Errorf("[%s] %v: %v", res.Status(), em["type"], em["reason"])}
	}
	return &db.Error{Op: op, Err: fmt.Errorf("[%s] %v", res.Status(), e["error"])}
}

func readBody(res *esapi.Response) ([]byte, error) {
	return io.ReadAll(res.Body)
}

// errFromBody builds an error from an already-consumed response body.
func errFromBody(status string, body []byte) error {
	var e map[string]any
	if err := json.Unmarshal(body, &e); err != nil {
		return fmt.Errorf("[%s] unreadable error body", status)
	}
	if em, ok := e["error"].(map[string]any); ok {
		return fmt.Errorf("[%s] %v: %v", status, em["type"], em["reason"])
	}
	return fmt.Errorf("[%s] %v", status, e["error"])
}
