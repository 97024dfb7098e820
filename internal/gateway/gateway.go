// Package gateway wraps the hosted backend: relational rows, binary object
// storage, and the authenticated session. Callers receive an explicitly
// constructed client and never touch a package-level singleton.
package gateway

import (
	"context"
	"time"
)

// Op is a comparison operator supported by the row store.
type Op string

const (
	OpEq       Op = "eq"
	OpContains Op = "contains" // case-insensitive substring match
	OpGte      Op = "gte"
	OpLte      Op = "lte"
	OpIn       Op = "in"
)

// Predicate is a single field comparison.
type Predicate struct {
	Field string
	Op    Op
	Value interface{}
}

// Query is a closed filter description translated by each row-store
// implementation.
// Where predicates are AND-combined; each OrGroup is OR-combined internally
// and AND-combined with the rest.
type Query struct {
	Where    []Predicate
	OrGroups [][]Predicate
	OrderBy  string
	Desc     bool
	Limit    int
	Offset   int
}

// Eq appends an equality predicate and returns the query for chaining.
func (q Query) Eq(field string, v interface{}) Query {
	q.Where = append(q.Where, Predicate{Field: field, Op: OpEq, Value: v})
	return q
}

// Contains appends a case-insensitive substring predicate.
func (q Query) Contains(field, substr string) Query {
	q.Where = append(q.Where, Predicate{Field: field, Op: OpContains, Value: substr})
	return q
}

// Gte appends a lower-bound predicate.
func (q Query) Gte(field string, v interface{}) Query {
	q.Where = append(q.Where, Predicate{Field: field, Op: OpGte, Value: v})
	return q
}

// Lte appends an upper-bound predicate.
func (q Query) Lte(field string, v interface{}) Query {
	q.Where = append(q.Where, Predicate{Field: field, Op: OpLte, Value: v})
	return q
}

// Or appends an OR-combined predicate group.
func (q Query) Or(preds ...Predicate) Query {
	q.OrGroups = append(q.OrGroups, preds)
	return q
}

// Rows is the relational side of the hosted backend. dest is a pointer to a
// slice of the model for the table.
type Rows interface {
	Select(table string, q Query, dest interface{}) error
	Insert(table string, row interface{}) error
	Update(table string, id string, patch map[string]interface{}) error
	Delete(table string, id string) error
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Path string `json:"path"`
}

// Session is the authenticated identity consumed by upload authorization.
type Session struct {
	UserID    string
	Email     string
	ExpiresAt time.Time
}

// Objects is the binary object store plus session retrieval.
type Objects interface {
	Upload(ctx context.Context, bucket, path string, data []byte, contentType string) (ObjectInfo, error)
	// PublicURL is a pure function of bucket and path; no network call.
	PublicURL(bucket, path string) string
	Session(ctx context.Context) (*Session, error)
}
