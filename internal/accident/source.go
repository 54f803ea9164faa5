package accident

import (
	"context"
	"iter"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"

	"github.com/roadsafety/schools-cli/internal/geo"
)

// ErrSequenceConsumed is yielded when a filter result is ranged over twice.
var ErrSequenceConsumed = eris.New("accident: record sequence already consumed")

// ErrInvalidWindow is yielded for an empty or inverted time window.
var ErrInvalidWindow = eris.New("accident: window end must be after start")

// Query is what a Source receives: a search area plus the non-spatial
// conditions.
type Query struct {
	Area      *geom.Polygon
	Window    Window
	Predicate Predicate
}

// Source yields involvement records matching a query.
type Source interface {
	Query(ctx context.Context, q Query) iter.Seq2[InvolvementRecord, error]
}

// Filter selects the involvement records inside a bounding box.
type Filter struct {
	source Source
}

// NewFilter creates a Filter reading from src.
func NewFilter(src Source) *Filter {
	return &Filter{source: src}
}

// Select returns the records intersecting box that satisfy p within w. The
// sequence is lazy and single-use; callers that need the records twice must
// collect them first.
func (f *Filter) Select(ctx context.Context, box geo.BoundingBox, w Window, p Predicate) iter.Seq2[InvolvementRecord, error] {
	if !w.Valid() {
		return failed(eris.Wrapf(ErrInvalidWindow, "[%s, %s)", w.Start, w.End))
	}
	if err := p.Validate(); err != nil {
		return failed(err)
	}

	q := Query{
		Area:      box.Polygon(),
		Window:    w,
		Predicate: p.Normalize(),
	}
	return singleUse(f.source.Query(ctx, q))
}

// Collect drains seq into a slice, stopping at the first error.
func Collect(seq iter.Seq2[InvolvementRecord, error]) ([]InvolvementRecord, error) {
	var out []InvolvementRecord
	for r, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func failed(err error) iter.Seq2[InvolvementRecord, error] {
	return func(yield func(InvolvementRecord, error) bool) {
		yield(InvolvementRecord{}, err)
	}
}

func singleUse(seq iter.Seq2[InvolvementRecord, error]) iter.Seq2[InvolvementRecord, error] {
	var used atomic.Bool
	return func(yield func(InvolvementRecord, error) bool) {
		if used.Swap(true) {
			yield(InvolvementRecord{}, ErrSequenceConsumed)
			return
		}
		seq(yield)
	}
}
