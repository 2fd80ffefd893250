package aggregation

import "testing"

func TestParseTree_MetricValue(t *testing.T) {
	raw := []byte(`{"max_year":{"value":2024.0,"value_as_string":"2024"}}`)

	res, err := ParseTree(raw)
	if err != nil {
		t.Fatalf("ParseTree: %v", err)
	}
	my := res["max_year"]
	if my == nil {
		t.Fatal("max_year missing")
	}
	if my.Value == nil || *my.Value != 2024.0 {
		t.Errorf("Value = %v, want 2024", my.Value)
	}
	if my.ValueAsString != "2024" {
		t.Errorf("ValueAsString = %q, want 2024", my.ValueAsString)
	}
	if len(my.Sub) != 0 {
		t.Errorf("Sub = %v, want none", my.Sub)
	}
}

func TestParseTree_TermsBuckets(t *testing.T) {
	raw := []byte(`{
		"by_lang": {
			"doc_count_error_upper_bound": 0,
			"sum_other_doc_count": 7,
			"buckets": [
				{"key": "go", "doc_count": 12},
				{"key": "rust", "doc_count": 5}
			]
		}
	}`)

	res, err := ParseTree(raw)
	if err != nil {
		t.Fatalf("ParseTree: %v", err)
	}
	bl := res["by_lang"]
	if bl == nil || len(bl.Buckets) != 2 {
		t.Fatalf("by_lang buckets = %+v", bl)
	}
	if bl.Buckets[0].Key != "go" || bl.Buckets[0].DocCount != 12 {
		t.Errorf("bucket[0] = %+v", bl.Buckets[0])
	}
	if bl.Buckets[1].Key != "rust" || bl.Buckets[1].DocCount != 5 {
		t.Errorf("bucket[1] = %+v", bl.Buckets[1])
	}
}

func TestParseTree_NestedSubAggregations(t *testing.T) {
	// A sub-aggregation lives at the same JSON level as the node's own
	// metadata; only the reserved markers keep the two apart.
	raw := []byte(`{
		"by_lang": {
			"buckets": [
				{
					"key": "go",
					"doc_count": 12,
					"max_year": {"value": 2024, "value_as_string": "2024"}
				}
			]
		},
		"filtered": {
			"doc_count": 42,
			"avg_len": {"value": 17.5}
		}
	}`)

	res, err := ParseTree(raw)
	if err != nil {
		t.Fatalf("ParseTree: %v", err)
	}

	b := res["by_lang"].Buckets[0]
	my := b.Sub["max_year"]
	if my == nil || my.Value == nil || *my.Value != 2024 {
		t.Fatalf("bucket sub max_year = %+v", my)
	}

	f := res["filtered"]
	if f.DocCount != 42 {
		t.Errorf("filtered.DocCount = %d, want 42", f.DocCount)
	}
	al := f.Sub["avg_len"]
	if al == nil || al.Value == nil || *al.Value != 17.5 {
		t.Fatalf("filtered sub avg_len = %+v", al)
	}
}

func TestParseTree_StructuralMarkersNotSubAggregations(t *testing.T) {
	raw := []byte(`{
		"top": {
			"max_score": 1.5,
			"score": 0.7,
			"keys": ["a", "b"],
			"inner": {"value": 3}
		}
	}`)

	res, err := ParseTree(raw)
	if err != nil {
		t.Fatalf("ParseTree: %v", err)
	}
	top := res["top"]
	if top.MaxScore == nil || *top.MaxScore != 1.5 {
		t.Errorf("MaxScore = %v, want 1.5", top.MaxScore)
	}
	if top.Score == nil || *top.Score != 0.7 {
		t.Errorf("Score = %v, want 0.7", top.Score)
	}
	if len(top.Keys) != 2 || top.Keys[0] != "a" {
		t.Errorf("Keys = %v", top.Keys)
	}
	if len(top.Sub) != 1 {
		t.Fatalf("Sub = %v, want only inner", top.Sub)
	}
	if _, ok := top.Sub["max_score"]; ok {
		t.Error("max_score misread as sub-aggregation")
	}
}

func TestParseTree_EmptyAndInvalid(t *testing.T) {
	res, err := ParseTree(nil)
	if err != nil || res != nil {
		t.Errorf("ParseTree(nil) = %v, %v", res, err)
	}

	if _, err := ParseTree([]byte(`[1,2,3]`)); err == nil {
		t.Error("expected error for non-object response")
	}
}

func TestParseTree_NumericBucketKeys(t *testing.T) {
	raw := []byte(`{
		"by_year": {
			"buckets": [
				{"key": 2024, "key_as_string": "2024", "doc_count": 3}
			]
		}
	}`)

	res, err := ParseTree(raw)
	if err != nil {
		t.Fatalf("ParseTree: %v", err)
	}
	b := res["by_year"].Buckets[0]
	if b.Key != "2024" || b.KeyAsString != "2024" || b.DocCount != 3 {
		t.Errorf("bucket = %+v", b)
	}
}
