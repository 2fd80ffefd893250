// Package docdex provides a Go client for full-text document search backed
// by Redis with the search module or by Elasticsearch.
//
// Collections hold documents with a content body plus tag and numeric
// fields; searches combine a query string, structured pre-filters and named
// aggregations.
//
// # Low-level API — explicit control
//
//	client, _ := docdex.New(ctx, docdex.WithRedis("localhost:6379", ""))
//	client.Collections().Create(ctx, "notes", []docdex.FieldInfo{
//	    {Name: "language", Type: docdex.FieldTag},
//	    {Name: "priority", Type: docdex.FieldNumeric},
//	})
//	client.Documents("notes").BatchUpsert(ctx, docs)
//	resp, _ := client.Search("notes").Query(ctx, "goroutine leak", &docdex.SearchOptions{
//	    Aggregations: docdex.NewAggregations().Terms("by_language", "language", 10),
//	})
//
// # High-level API — schema-first with Go generics
//
//	type Note struct {
//	    ID       string  `docdex:"note_id,id"`
//	    Body     string  `docdex:"body,content"`
//	    Language string  `docdex:"language,tag"`
//	    Priority float64 `docdex:"priority,numeric"`
//	}
//
//	idx, _ := docdex.NewIndex[Note](client, "notes")
//	_ = idx.Ensure(ctx)
//	res, _ := idx.Search().Query("goroutine leak").
//	    Where("language", "go").
//	    Agg(docdex.MaxAgg("max_priority", "priority")).
//	    Limit(20).Do(ctx)
//
// Aggregation names become keys of the response mapping; a few tokens are
// reserved for response parsing and are rejected wherever a name is
// registered (see ReservedNames).
package docdex
