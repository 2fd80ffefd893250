// Package domain holds the shared model types of docdex: documents and the
// sentinel errors the layers above map their failures onto.
package domain

// KeyPrefix namespaces every key docdex writes to the backing engine.
const KeyPrefix = "docdex:"

// Document is a document stored in a collection.
type Document struct {
	ID       string
	Content  string
	Tags     map[string]string
	Numerics map[string]float64
}
