// Package semantic is the search-of-last-resort: when tag scoring finds
// nothing it looks up the nearest places in a precomputed embedding index.
// The subsystem is optional by design; any initialization problem turns it
// into a no-op that returns empty results instead of failing requests.
package semantic

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"sort"

	"github.com/gorodgid/go-route-planner/internal/types"
)

// DefaultTopK is how many nearest places a fallback search returns.
const DefaultTopK = 5

// QueryEncoder encodes a live query with a specific embedding model. The
// model identifier comes from the index file so query vectors stay in the
// same space as the precomputed place vectors.
type QueryEncoder interface {
	Encode(ctx context.Context, model, text string) ([]float32, error)
}

// PlaceResolver resolves index hits back to full place records.
type PlaceResolver interface {
	PlaceByID(id int) (types.Place, bool)
}

type indexFile struct {
	Model     string      `json:"model"`
	Dimension int         `json:"dimension"`
	PlaceIDs  []int       `json:"place_ids"`
	Vectors   [][]float32 `json:"vectors"`
}

// Fallback performs exact L2 nearest-neighbor search over the flat index.
type Fallback struct {
	logger   *slog.Logger
	encoder  QueryEncoder
	resolver PlaceResolver

	model    string
	dim      int
	placeIDs []int
	vectors  [][]float32

	enabled bool
}

// New loads the index file and wires the encoder. Missing or malformed
// index data, a dimension mismatch between rows, a row/id count mismatch or
// a nil encoder all produce a disabled instance; New never fails.
func New(indexPath string, encoder QueryEncoder, resolver PlaceResolver, logger *slog.Logger) *Fallback {
	f := &Fallback{logger: logger, encoder: encoder, resolver: resolver}

	if encoder == nil {
		logger.Warn("semantic fallback disabled: no query encoder configured")
		return f
	}

	data, err := os.ReadFile(indexPath)
	if err != nil {
		logger.Warn("semantic fallback disabled: cannot read embedding index",
			slog.String("path", indexPath), slog.Any("error", err))
		return f
	}
	var idx indexFile
	if err := json.Unmarshal(data, &idx); err != nil {
		logger.Warn("semantic fallback disabled: cannot decode embedding index",
			slog.String("path", indexPath), slog.Any("error", err))
		return f
	}
	if idx.Model == "" || idx.Dimension <= 0 || len(idx.Vectors) == 0 || len(idx.Vectors) != len(idx.PlaceIDs) {
		logger.Warn("semantic fallback disabled: embedding index is inconsistent",
			slog.String("model", idx.Model),
			slog.Int("dimension", idx.Dimension),
			slog.Int("vectors", len(idx.Vectors)),
			slog.Int("place_ids", len(idx.PlaceIDs)))
		return f
	}
	for i, v := range idx.Vectors {
		if len(v) != idx.Dimension {
			logger.Warn("semantic fallback disabled: embedding row has wrong dimension",
				slog.Int("row", i), slog.Int("got", len(v)), slog.Int("want", idx.Dimension))
			return f
		}
	}

	f.model = idx.Model
	f.dim = idx.Dimension
	f.placeIDs = idx.PlaceIDs
	f.vectors = idx.Vectors
	f.enabled = true
	logger.Info("semantic fallback ready",
		slog.String("model", idx.Model),
		slog.Int("dimension", idx.Dimension),
		slog.Int("vectors", len(idx.Vectors)))
	return f
}

// Enabled reports whether the index and encoder initialized.
func (f *Fallback) Enabled() bool {
	return f.enabled
}

// Search returns up to topK places nearest to the query in embedding space,
// nearest first. No distance threshold is applied: a fallback that returns
// far-away matches still beats returning nothing. Any failure yields an
// empty list.
func (f *Fallback) Search(ctx context.Context, query string, topK int) []types.Place {
	if !f.enabled {
		f.logger.Warn("semantic fallback unavailable, returning no places")
		return nil
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	vec, err := f.encoder.Encode(ctx, f.model, query)
	if err != nil {
		f.logger.Warn("semantic fallback: query encoding failed", slog.Any("error", err))
		return nil
	}
	if len(vec) != f.dim {
		f.logger.Warn("semantic fallback: query vector dimension mismatch",
			slog.Int("got", len(vec)), slog.Int("want", f.dim))
		return nil
	}

	order := make([]int, len(f.vectors))
	dists := make([]float64, len(f.vectors))
	for i, row := range f.vectors {
		order[i] = i
		dists[i] = sqL2(vec, row)
	}
	sort.SliceStable(order, func(a, b int) bool { return dists[order[a]] < dists[order[b]] })

	if topK > len(order) {
		topK = len(order)
	}
	found := make([]types.Place, 0, topK)
	for _, i := range order[:topK] {
		place, ok := f.resolver.PlaceByID(f.placeIDs[i])
		if !ok {
			f.logger.Warn("semantic fallback: index references unknown place",
				slog.Int("place_id", f.placeIDs[i]))
			continue
		}
		found = append(found, place)
	}
	f.logger.Info("semantic search finished",
		slog.String("query", query), slog.Int("found", len(found)))
	return found
}

// sqL2 is the squared Euclidean distance; ordering by it equals ordering by
// true L2 distance.
func sqL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
