// Package vectorstore is the gateway between chatpdf and the vector store:
// collection naming and lifecycle, vector upsert, similarity query and full listing.
package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Mikedodunnit/Chatpdf/internal/db"
	"github.com/Mikedodunnit/Chatpdf/internal/domain"
	domcol "github.com/Mikedodunnit/Chatpdf/internal/domain/collection"
	"github.com/Mikedodunnit/Chatpdf/internal/domain/vector"
	"github.com/Mikedodunnit/Chatpdf/internal/retry"
)

// store is the consumer interface for the gateway (ISP).
//
//nolint:interfacebloat // gateway needs hash + index + search operations
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string, deleteDocs bool) error
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchList(ctx context.Context, index, query string, offset, limit int, fields []string) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// Options configures a Gateway.
type Options struct {
	Dimensions   int
	HNSW         HNSWConfig
	Retry        retry.Policy
	ListPageSize int
}

// Gateway implements the vector store operations used by ingestion and retrieval.
type Gateway struct {
	store    store
	dims     int
	hnsw     HNSWConfig
	policy   retry.Policy
	pageSize int
	now      func() time.Time
}

// New creates a gateway over the given store.
func New(s store, opts Options) *Gateway {
	g := &Gateway{
		store:    s,
		dims:     opts.Dimensions,
		hnsw:     HNSWConfig{M: 16, EFConstruct: 200},
		policy:   opts.Retry,
		pageSize: opts.ListPageSize,
		now:      time.Now,
	}
	if opts.HNSW.M > 0 {
		g.hnsw.M = opts.HNSW.M
	}
	if opts.HNSW.EFConstruct > 0 {
		g.hnsw.EFConstruct = opts.HNSW.EFConstruct
	}
	if g.pageSize <= 0 {
		g.pageSize = 100
	}
	return g
}

// CollectionNameFor derives the collection name for a document key.
func (g *Gateway) CollectionNameFor(documentKey string) string {
	return domcol.NameFor(documentKey)
}

// GetOrCreate returns the collection, creating metadata and index when absent.
// Safe to call concurrently: an index that already exists counts as success.
func (g *Gateway) GetOrCreate(ctx context.Context, name string) (domcol.Collection, error) {
	op := "get or create collection " + name
	if !domcol.ValidName(name) {
		return domcol.Collection{}, domain.NewStoreError(op, domain.ErrInvalidInput)
	}

	var col domcol.Collection
	err := g.call(ctx, func(ctx context.Context) error {
		m, err := g.store.HGetAll(ctx, metaKey(name))
		switch {
		case err == nil:
			existing, perr := collectionFromHash(m)
			if perr != nil {
				return fmt.Errorf("parse collection %s: %w", name, perr)
			}
			if existing.VectorDim() != g.dims {
				return fmt.Errorf("collection %s has dimension %d, configured %d: %w",
					name, existing.VectorDim(), g.dims, domain.ErrVectorDimMismatch)
			}
			col = existing
		case errors.Is(err, db.ErrKeyNotFound):
			created, cerr := domcol.New(name, g.dims, g.now().UnixMilli())
			if cerr != nil {
				return cerr
			}
			if err := g.store.HSet(ctx, metaKey(name), collectionToHash(created)); err != nil {
				return fmt.Errorf("hset collection %s: %w", name, err)
			}
			col = created
		default:
			return fmt.Errorf("hgetall collection %s: %w", name, err)
		}

		def, err := buildIndex(name, col.VectorDim(), g.hnsw)
		if err != nil {
			return fmt.Errorf("build index: %w", err)
		}
		if err := g.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
			return fmt.Errorf("create index %s: %w", def.Name, err)
		}
		return nil
	})
	if err != nil {
		return domcol.Collection{}, domain.NewStoreError(op, err)
	}
	return col, nil
}

// Get reads collection metadata. A collection never created is domain.ErrNotFound.
func (g *Gateway) Get(ctx context.Context, name string) (domcol.Collection, error) {
	var m map[string]string
	err := g.call(ctx, func(ctx context.Context) error {
		var err error
		m, err = g.store.HGetAll(ctx, metaKey(name))
		return err
	})
	if errors.Is(err, db.ErrKeyNotFound) {
		return domcol.Collection{}, fmt.Errorf("collection %s: %w", name, domain.ErrNotFound)
	}
	if err != nil {
		return domcol.Collection{}, domain.NewStoreError("get collection "+name, err)
	}
	col, err := collectionFromHash(m)
	if err != nil {
		return domcol.Collection{}, domain.NewStoreError("get collection "+name, err)
	}
	return col, nil
}

// Upsert writes all vectors in one pipelined batch. Existing ids are overwritten.
func (g *Gateway) Upsert(ctx context.Context, name string, vectors []vector.Vector) error {
	op := "upsert " + name
	if len(vectors) == 0 {
		return nil
	}

	items := make([]db.HashSetItem, len(vectors))
	for i, v := range vectors {
		if v.ID == "" {
			return domain.NewStoreError(op, fmt.Errorf("vector %d: empty id: %w", i, domain.ErrInvalidInput))
		}
		if len(v.Values) != g.dims {
			return domain.NewStoreError(op, fmt.Errorf("vector %s: got %d, want %d: %w",
				v.ID, len(v.Values), g.dims, domain.ErrVectorDimMismatch))
		}
		items[i] = db.HashSetItem{Key: vectorKey(name, v.ID), Fields: vectorToHash(v)}
	}

	if err := g.call(ctx, func(ctx context.Context) error {
		return g.store.HSetMulti(ctx, items)
	}); err != nil {
		return domain.NewStoreError(op, err)
	}
	return nil
}

// Query returns the k nearest vectors, most similar first.
// Score is the similarity 1 - cosine distance. A collection that was never
// created yields no matches.
func (g *Gateway) Query(ctx context.Context, name string, values []float32, k int) ([]vector.Match, error) {
	op := "query " + name
	if len(values) != g.dims {
		return nil, domain.NewStoreError(op, fmt.Errorf("query vector: got %d, want %d: %w",
			len(values), g.dims, domain.ErrVectorDimMismatch))
	}

	var res *db.SearchResult
	err := g.call(ctx, func(ctx context.Context) error {
		var err error
		res, err = g.store.SearchKNN(ctx, &db.KNNQuery{
			IndexName:    indexName(name),
			Vector:       values,
			K:            k,
			ReturnFields: returnFields,
		})
		return err
	})
	if errors.Is(err, db.ErrIndexNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.NewStoreError(op, err)
	}

	matches := make([]vector.Match, 0, len(res.Entries))
	for _, e := range res.Entries {
		meta := metadataFromFields(e.Fields)
		matches = append(matches, vector.Match{
			ID:       idFromKey(name, e.Key),
			Score:    1 - e.Distance,
			Document: meta.Text,
			Metadata: meta,
		})
	}
	return matches, nil
}

// ListAll reads every stored vector of the collection, ordered by page number.
// Matches carry no score.
func (g *Gateway) ListAll(ctx context.Context, name string) ([]vector.Match, error) {
	op := "list " + name
	var matches []vector.Match

	for offset := 0; ; offset += g.pageSize {
		var res *db.SearchResult
		err := g.call(ctx, func(ctx context.Context) error {
			var err error
			res, err = g.store.SearchList(ctx, indexName(name), "*", offset, g.pageSize, returnFields)
			return err
		})
		if errors.Is(err, db.ErrIndexNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, domain.NewStoreError(op, err)
		}

		for _, e := range res.Entries {
			meta := metadataFromFields(e.Fields)
			matches = append(matches, vector.Match{
				ID:       idFromKey(name, e.Key),
				Document: meta.Text,
				Metadata: meta,
			})
		}

		if len(res.Entries) == 0 || offset+g.pageSize >= res.Total {
			break
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Metadata.PageNumber != matches[j].Metadata.PageNumber {
			return matches[i].Metadata.PageNumber < matches[j].Metadata.PageNumber
		}
		return matches[i].ID < matches[j].ID
	})
	return matches, nil
}

// Count returns the number of stored vectors.
func (g *Gateway) Count(ctx context.Context, name string) (int, error) {
	var n int
	err := g.call(ctx, func(ctx context.Context) error {
		var err error
		n, err = g.store.SearchCount(ctx, indexName(name), "*")
		return err
	})
	if errors.Is(err, db.ErrIndexNotFound) {
		return 0, fmt.Errorf("collection %s: %w", name, domain.ErrNotFound)
	}
	if err != nil {
		return 0, domain.NewStoreError("count "+name, err)
	}
	return n, nil
}

// Delete drops the index together with every vector hash, then the metadata.
func (g *Gateway) Delete(ctx context.Context, name string) error {
	op := "delete " + name
	var indexMissing bool

	err := g.call(ctx, func(ctx context.Context) error {
		err := g.store.DropIndex(ctx, indexName(name), true)
		if errors.Is(err, db.ErrIndexNotFound) {
			indexMissing = true
			return nil
		}
		return err
	})
	if err != nil {
		return domain.NewStoreError(op, err)
	}

	if indexMissing {
		_, err := g.store.HGetAll(ctx, metaKey(name))
		if errors.Is(err, db.ErrKeyNotFound) {
			return fmt.Errorf("collection %s: %w", name, domain.ErrNotFound)
		}
		if err != nil {
			return domain.NewStoreError(op, err)
		}
	}

	if err := g.call(ctx, func(ctx context.Context) error {
		return g.store.Del(ctx, metaKey(name))
	}); err != nil {
		return domain.NewStoreError(op, err)
	}
	return nil
}

func (g *Gateway) call(ctx context.Context, op func(ctx context.Context) error) error {
	return retry.Do(ctx, g.policy, retry.IsTransient, op)
}
