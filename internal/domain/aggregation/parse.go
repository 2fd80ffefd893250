package aggregation

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// Result is a parsed aggregation response node: the metric value and/or
// buckets of one named aggregation, plus any nested sub-aggregations found at
// the same JSON level.
type Result struct {
	Value         *float64
	ValueAsString string
	DocCount      int64
	Keys          []string
	MaxScore      *float64
	Score         *float64
	Buckets       []Bucket
	Sub           map[string]*Result
}

// Bucket is a single bucket of a terms-style aggregation.
type Bucket struct {
	Key         string
	KeyAsString string
	DocCount    int64
	Sub         map[string]*Result
}

// structuralKeys are the field names that belong to an aggregation node
// itself rather than to a nested sub-aggregation. Everything else at the same
// JSON level that holds an object is treated as a sub-aggregation — which is
// exactly why user aggregation names colliding with these markers are
// rejected at registration time (see ValidateName).
var structuralKeys = map[string]bool{
	"value":                       true,
	"value_as_string":             true,
	"doc_count":                   true,
	"keys":                        true,
	"max_score":                   true,
	"score":                       true,
	"buckets":                     true,
	"doc_count_error_upper_bound": true,
	"sum_other_doc_count":         true,
	"meta":                        true,
}

// bucketStructuralKeys play the same role inside a single bucket object.
var bucketStructuralKeys = map[string]bool{
	"key":           true,
	"key_as_string": true,
	"doc_count":     true,
}

// ParseTree parses a raw name-keyed aggregation response object into Results.
// The top level maps aggregation names to their nodes; nesting is resolved
// heuristically per node.
func ParseTree(raw []byte) (map[string]*Result, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return nil, fmt.Errorf("aggregation response is not a JSON object")
	}

	out := make(map[string]*Result)
	root.ForEach(func(name, node gjson.Result) bool {
		if node.IsObject() {
			out[name.String()] = parseNode(node)
		}
		return true
	})
	return out, nil
}

// parseNode classifies each key of an aggregation node as structural metadata
// or as a nested sub-aggregation.
func parseNode(node gjson.Result) *Result {
	r := &Result{}
	node.ForEach(func(key, v gjson.Result) bool {
		name := key.String()
		switch name {
		case "value":
			if v.Type == gjson.Number {
				f := v.Float()
				r.Value = &f
			}
		case "value_as_string":
			r.ValueAsString = v.String()
		case "doc_count":
			r.DocCount = v.Int()
		case "keys":
			v.ForEach(func(_, k gjson.Result) bool {
				r.Keys = append(r.Keys, k.String())
				return true
			})
		case "max_score":
			f := v.Float()
			r.MaxScore = &f
		case "score":
			f := v.Float()
			r.Score = &f
		case "buckets":
			r.Buckets = parseBuckets(v)
		default:
			if structuralKeys[name] {
				return true
			}
			if v.IsObject() {
				if r.Sub == nil {
					r.Sub = make(map[string]*Result)
				}
				r.Sub[name] = parseNode(v)
			}
		}
		return true
	})
	return r
}

func parseBuckets(v gjson.Result) []Bucket {
	var buckets []Bucket
	v.ForEach(func(_, b gjson.Result) bool {
		if !b.IsObject() {
			return true
		}
		bucket := Bucket{}
		b.ForEach(func(key, bv gjson.Result) bool {
			name := key.String()
			switch name {
			case "key":
				bucket.Key = bv.String()
			case "key_as_string":
				bucket.KeyAsString = bv.String()
			case "doc_count":
				bucket.DocCount = bv.Int()
			default:
				if bucketStructuralKeys[name] {
					return true
				}
				if bv.IsObject() {
					if bucket.Sub == nil {
						bucket.Sub = make(map[string]*Result)
					}
					bucket.Sub[name] = parseNode(bv)
				}
			}
			return true
		})
		buckets = append(buckets, bucket)
		return true
	})
	return buckets
}
