// Package store persists compiled graphs so the HTTP server can return them
// by id. [Memory] serves single-process deployments and tests; [Mongo]
// shares results between replicas.
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/vlanimate/pkg/pipeline"
)

// Record is one stored compile result.
type Record struct {
	ID        string          `json:"id" bson:"_id"`
	DocHash   string          `json:"doc_hash" bson:"doc_hash"`
	Compiler  string          `json:"compiler" bson:"compiler"`
	Graph     json.RawMessage `json:"graph" bson:"graph"`
	Stats     pipeline.Stats  `json:"stats" bson:"stats"`
	CreatedAt time.Time       `json:"created_at" bson:"created_at"`
}

// Store saves and retrieves records. Get and Lookup return a NOT_FOUND
// error when nothing matches.
type Store interface {
	Put(ctx context.Context, r *Record) error
	Get(ctx context.Context, id string) (*Record, error)
	// Lookup returns the newest record compiled from docHash by compiler.
	Lookup(ctx context.Context, docHash, compiler string) (*Record, error)
	Close(ctx context.Context) error
}

// NewRecord returns a record with a fresh id and creation time.
func NewRecord(docHash, compiler string, graph []byte, stats pipeline.Stats) *Record {
	return &Record{
		ID:        uuid.NewString(),
		DocHash:   docHash,
		Compiler:  compiler,
		Graph:     graph,
		Stats:     stats,
		CreatedAt: time.Now().UTC(),
	}
}
