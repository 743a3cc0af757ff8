// Package query answers segment queries against a set of walls. An
// R-tree over the wall bounding boxes narrows each query to the walls a
// segment can reach before the exact intersection test runs.
//
// An Index is read-only once built and safe for concurrent queries.
package query

import (
	"fmt"
	"math"
	"sort"

	errorsmod "cosmossdk.io/errors"
	"github.com/chazu/reverb/pkg/geom"
	"github.com/chazu/reverb/pkg/wall"
	"github.com/dhconnelly/rtreego"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/spatial/r3"
)

// R-tree branching factors.
const (
	minChildren = 4
	maxChildren = 16
)

type config struct {
	log zerolog.Logger
}

// Option configures an Index.
type Option func(*config)

// WithLogger sets the logger for index builds and batch runs.
func WithLogger(l zerolog.Logger) Option {
	return func(c *config) {
		c.log = l
	}
}

// entry is a wall stored in the tree.
type entry struct {
	id   int
	w    *wall.Wall
	rect rtreego.Rect
}

func (e *entry) Bounds() rtreego.Rect { return e.rect }

// Index is a broad-phase index over walls.
type Index struct {
	tree    *rtreego.Rtree
	entries []*entry
	pad     float64
	dups    int
	log     zerolog.Logger
}

// Segment is a query from P0 to P1.
type Segment struct {
	P0, P1 r3.Vec
}

// Hit is a crossing found by the index.
type Hit struct {
	wall.Hit
	Wall *wall.Wall
	// ID is the wall's position among the indexed walls.
	ID int
	// Distance from the segment start to the crossing.
	Distance float64
}

// NewIndex indexes walls in order. Nil walls are skipped and a wall that
// is SameAs an earlier one is dropped as a duplicate.
func NewIndex(walls []*wall.Wall, opts ...Option) *Index {
	cfg := config{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	idx := &Index{log: cfg.log}
	seen := make(map[wall.Key][]*wall.Wall)
	objs := make([]rtreego.Spatial, 0, len(walls))

	for _, w := range walls {
		if w == nil {
			continue
		}
		if isDuplicate(seen[w.Key()], w) {
			idx.dups++
			continue
		}
		seen[w.Key()] = append(seen[w.Key()], w)

		e := &entry{id: len(idx.entries), w: w, rect: wallRect(w)}
		idx.entries = append(idx.entries, e)
		objs = append(objs, e)
		idx.pad = math.Max(idx.pad, w.Epsilon())
	}
	idx.tree = rtreego.NewTree(3, minChildren, maxChildren, objs...)

	idx.log.Debug().
		Int("walls", len(idx.entries)).
		Int("duplicates", idx.dups).
		Int("depth", idx.tree.Depth()).
		Msg("built wall index")
	return idx
}

func isDuplicate(bucket []*wall.Wall, w *wall.Wall) bool {
	for _, other := range bucket {
		if other.SameAs(w) {
			return true
		}
	}
	return false
}

// Len returns the number of indexed walls.
func (idx *Index) Len() int { return len(idx.entries) }

// Duplicates returns how many walls NewIndex dropped as duplicates.
func (idx *Index) Duplicates() int { return idx.dups }

// Walls returns the indexed walls in ID order.
func (idx *Index) Walls() []*wall.Wall {
	out := make([]*wall.Wall, len(idx.entries))
	for i, e := range idx.entries {
		out[i] = e.w
	}
	return out
}

// Candidates returns the walls whose bounding box meets the segment's,
// in ID order. Non-finite endpoints are rejected like in AllHits.
func (idx *Index) Candidates(p0, p1 r3.Vec) ([]*wall.Wall, error) {
	if !geom.Finite(p0) || !geom.Finite(p1) {
		return nil, errorsmod.Wrapf(wall.ErrInvalidNumeric, "segment %v -> %v", p0, p1)
	}
	found := idx.candidates(p0, p1)
	out := make([]*wall.Wall, len(found))
	for i, e := range found {
		out[i] = e.w
	}
	return out, nil
}

func (idx *Index) candidates(p0, p1 r3.Vec) []*entry {
	if len(idx.entries) == 0 {
		return nil
	}
	lo := r3.Vec{X: math.Min(p0.X, p1.X), Y: math.Min(p0.Y, p1.Y), Z: math.Min(p0.Z, p1.Z)}
	hi := r3.Vec{X: math.Max(p0.X, p1.X), Y: math.Max(p0.Y, p1.Y), Z: math.Max(p0.Z, p1.Z)}
	found := idx.tree.SearchIntersect(rect(lo, hi, idx.pad))

	out := make([]*entry, len(found))
	for i, s := range found {
		out[i] = s.(*entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// AllHits returns every wall the segment crosses, nearest first. Walls at
// the same distance keep ID order.
func (idx *Index) AllHits(p0, p1 r3.Vec) ([]Hit, error) {
	if !geom.Finite(p0) || !geom.Finite(p1) {
		return nil, errorsmod.Wrapf(wall.ErrInvalidNumeric, "segment %v -> %v", p0, p1)
	}
	length := geom.Distance(p0, p1)

	var hits []Hit
	for _, e := range idx.candidates(p0, p1) {
		h, ok, err := e.w.Intersection(p0, p1)
		if err != nil {
			return nil, fmt.Errorf("wall %d: %w", e.id, err)
		}
		if ok {
			hits = append(hits, Hit{Hit: h, Wall: e.w, ID: e.id, Distance: h.T * length})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	return hits, nil
}

// FirstHit returns the crossing nearest to p0. ok is false when the
// segment crosses no wall.
func (idx *Index) FirstHit(p0, p1 r3.Vec) (Hit, bool, error) {
	hits, err := idx.AllHits(p0, p1)
	if err != nil || len(hits) == 0 {
		return Hit{}, false, err
	}
	return hits[0], true, nil
}

func wallRect(w *wall.Wall) rtreego.Rect {
	ring := w.Boundary().Ring()
	lo, hi := ring[0], ring[0]
	for _, p := range ring[1:] {
		lo = r3.Vec{X: math.Min(lo.X, p.X), Y: math.Min(lo.Y, p.Y), Z: math.Min(lo.Z, p.Z)}
		hi = r3.Vec{X: math.Max(hi.X, p.X), Y: math.Max(hi.Y, p.Y), Z: math.Max(hi.Z, p.Z)}
	}
	return rect(lo, hi, w.Epsilon())
}

// rect pads the box by pad on every side. Boxes that merely touch do not
// intersect in the tree, and axis-aligned walls have zero thickness.
func rect(lo, hi r3.Vec, pad float64) rtreego.Rect {
	r, err := rtreego.NewRectFromPoints(
		rtreego.Point{lo.X - pad, lo.Y - pad, lo.Z - pad},
		rtreego.Point{hi.X + pad, hi.Y + pad, hi.Z + pad},
	)
	if err != nil {
		panic(fmt.Sprintf("rtreego.NewRectFromPoints: %v", err))
	}
	return r
}
