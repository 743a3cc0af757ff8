package query

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/chazu/reverb/pkg/wall"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

// panel returns a 4x4 wall in the plane x = at, spanning y and z 0..4,
// with an optional 2x2 hole in its middle.
func panel(t *testing.T, at float64, holed bool, opts ...wall.Option) *wall.Wall {
	t.Helper()
	boundary := []r3.Vec{{X: at}, {X: at, Y: 4}, {X: at, Y: 4, Z: 4}, {X: at, Z: 4}}
	var holes [][]r3.Vec
	if holed {
		holes = [][]r3.Vec{{{X: at, Y: 1, Z: 1}, {X: at, Y: 3, Z: 1}, {X: at, Y: 3, Z: 3}, {X: at, Y: 1, Z: 3}}}
	}
	w, err := wall.New(boundary, holes, opts...)
	require.NoError(t, err)
	return w
}

// room returns the six faces of the cube [0,4]^3.
func room(t *testing.T) []*wall.Wall {
	t.Helper()
	faces := [][]r3.Vec{
		{{}, {Y: 4}, {Y: 4, Z: 4}, {Z: 4}},                       // x=0
		{{X: 4}, {X: 4, Z: 4}, {X: 4, Y: 4, Z: 4}, {X: 4, Y: 4}}, // x=4
		{{}, {Z: 4}, {X: 4, Z: 4}, {X: 4}},                       // y=0
		{{Y: 4}, {X: 4, Y: 4}, {X: 4, Y: 4, Z: 4}, {Y: 4, Z: 4}}, // y=4
		{{}, {X: 4}, {X: 4, Y: 4}, {Y: 4}},                       // z=0
		{{Z: 4}, {Y: 4, Z: 4}, {X: 4, Y: 4, Z: 4}, {X: 4, Z: 4}}, // z=4
	}
	names := []string{"west", "east", "south", "north", "floor", "ceiling"}
	walls := make([]*wall.Wall, len(faces))
	for i, f := range faces {
		w, err := wall.New(f, nil, wall.WithName(names[i]))
		require.NoError(t, err)
		walls[i] = w
	}
	return walls
}

func TestNewIndexDropsDuplicates(t *testing.T) {
	a := panel(t, 1, false)
	b := panel(t, 1, false, wall.WithName("copy"))
	c := panel(t, 1, true)
	idx := NewIndex([]*wall.Wall{a, nil, b, c, a})

	assert.Equal(t, 2, idx.Len())
	assert.Equal(t, 2, idx.Duplicates())
	assert.Equal(t, []*wall.Wall{a, c}, idx.Walls())
}

func TestCandidates(t *testing.T) {
	walls := room(t)
	idx := NewIndex(walls)
	require.Equal(t, 6, idx.Len())

	candidates := func(p0, p1 r3.Vec) []*wall.Wall {
		t.Helper()
		got, err := idx.Candidates(p0, p1)
		require.NoError(t, err)
		return got
	}

	// A short segment near the west wall only reaches boxes that touch x<=0.5.
	got := candidates(r3.Vec{X: 0.5, Y: 2, Z: 2}, r3.Vec{X: -0.5, Y: 2, Z: 2})
	require.Len(t, got, 1)
	assert.Equal(t, "west", got[0].Name())

	// Axis-aligned walls have flat boxes; padding keeps them reachable.
	got = candidates(r3.Vec{X: 2, Y: 2, Z: 0}, r3.Vec{X: 2, Y: 2, Z: 0})
	require.Len(t, got, 1)
	assert.Equal(t, "floor", got[0].Name())

	assert.Empty(t, candidates(r3.Vec{X: 10, Y: 10, Z: 10}, r3.Vec{X: 11, Y: 11, Z: 11}))
	assert.Len(t, candidates(r3.Vec{X: -1, Y: -1, Z: -1}, r3.Vec{X: 5, Y: 5, Z: 5}), 6)
}

func TestCandidatesInvalidInput(t *testing.T) {
	idx := NewIndex(room(t))
	for _, bad := range []r3.Vec{{X: math.NaN()}, {Y: math.Inf(1)}, {Z: math.Inf(-1)}} {
		got, err := idx.Candidates(bad, r3.Vec{X: 1, Y: 1, Z: 1})
		assert.Nil(t, got)
		assert.True(t, errors.Is(err, wall.ErrInvalidNumeric), "got %v", err)

		_, err = idx.Candidates(r3.Vec{X: 1, Y: 1, Z: 1}, bad)
		assert.True(t, errors.Is(err, wall.ErrInvalidNumeric), "got %v", err)
	}
}

func TestFirstHitInsideRoom(t *testing.T) {
	idx := NewIndex(room(t))
	center := r3.Vec{X: 2, Y: 2, Z: 2}
	tests := []struct {
		dir  r3.Vec
		want string
	}{
		{r3.Vec{X: -1}, "west"},
		{r3.Vec{X: 1}, "east"},
		{r3.Vec{Y: -1}, "south"},
		{r3.Vec{Y: 1}, "north"},
		{r3.Vec{Z: -1}, "floor"},
		{r3.Vec{Z: 1}, "ceiling"},
		{r3.Vec{X: 1, Y: 0.2, Z: -0.3}, "east"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			end := r3.Add(center, r3.Scale(10, tt.dir))
			h, ok, err := idx.FirstHit(center, end)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, tt.want, h.Wall.Name())
			assert.InDelta(t, geomDistance(center, h.Point), h.Distance, 1e-9)
		})
	}

	_, ok, err := idx.FirstHit(center, r3.Vec{X: 3, Y: 3, Z: 3})
	require.NoError(t, err)
	assert.False(t, ok, "segment ending inside the room")
}

func geomDistance(a, b r3.Vec) float64 { return r3.Norm(r3.Sub(b, a)) }

func TestAllHitsOrdered(t *testing.T) {
	// Listed out of order; the middle panel has a hole.
	far, mid, near := panel(t, 3, false), panel(t, 2, true), panel(t, 1, false)
	idx := NewIndex([]*wall.Wall{far, mid, near})

	hits, err := idx.AllHits(r3.Vec{X: 0, Y: 0.5, Z: 0.5}, r3.Vec{X: 4, Y: 0.5, Z: 0.5})
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Same(t, near, hits[0].Wall)
	assert.Same(t, mid, hits[1].Wall)
	assert.Same(t, far, hits[2].Wall)
	assert.InDelta(t, 1, hits[0].Distance, 1e-12)
	assert.InDelta(t, 2, hits[1].Distance, 1e-12)
	assert.InDelta(t, 3, hits[2].Distance, 1e-12)
	assert.Equal(t, 2, hits[0].ID)

	// Through the hole of the middle panel.
	hits, err = idx.AllHits(r3.Vec{X: 4, Y: 2, Z: 2}, r3.Vec{X: 0, Y: 2, Z: 2})
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Same(t, far, hits[0].Wall)
	assert.Same(t, near, hits[1].Wall)

	// On the hole's edge the solid wins.
	hits, err = idx.AllHits(r3.Vec{X: 0, Y: 1, Z: 2}, r3.Vec{X: 4, Y: 1, Z: 2})
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.True(t, hits[1].Boundary)
}

func TestAllHitsInvalidNumeric(t *testing.T) {
	idx := NewIndex([]*wall.Wall{panel(t, 1, false)})
	_, err := idx.AllHits(r3.Vec{X: math.NaN()}, r3.Vec{X: 2})
	assert.True(t, errors.Is(err, wall.ErrInvalidNumeric))
	_, ok, err := idx.FirstHit(r3.Vec{}, r3.Vec{Y: math.Inf(1)})
	assert.False(t, ok)
	assert.True(t, errors.Is(err, wall.ErrInvalidNumeric))
}

func TestEmptyIndex(t *testing.T) {
	idx := NewIndex(nil)
	assert.Zero(t, idx.Len())
	got, err := idx.Candidates(r3.Vec{}, r3.Vec{X: 1})
	assert.NoError(t, err)
	assert.Empty(t, got)
	_, ok, err := idx.FirstHit(r3.Vec{}, r3.Vec{X: 1})
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestBatch(t *testing.T) {
	idx := NewIndex(room(t))
	center := r3.Vec{X: 2, Y: 2, Z: 2}

	segs := make([]Segment, 64)
	for i := range segs {
		a := 2 * math.Pi * float64(i) / float64(len(segs))
		segs[i] = Segment{P0: center, P1: r3.Add(center, r3.Vec{X: 10 * math.Cos(a), Y: 10 * math.Sin(a), Z: float64(i%3 - 1)})}
	}
	segs[10].P1 = r3.Vec{X: 2.5, Y: 2.5, Z: 2.5} // stays inside

	for _, workers := range []int{0, 1, 4} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			results, err := idx.Batch(context.Background(), segs, workers)
			require.NoError(t, err)
			require.Len(t, results, len(segs))
			for i, s := range segs {
				want, ok, err := idx.FirstHit(s.P0, s.P1)
				require.NoError(t, err)
				assert.Equal(t, ok, results[i].OK, "segment %d", i)
				assert.Equal(t, want, results[i].Hit, "segment %d", i)
			}
			assert.False(t, results[10].OK)
		})
	}
}

func TestBatchInvalidSegment(t *testing.T) {
	idx := NewIndex(room(t))
	segs := []Segment{
		{P0: r3.Vec{X: 2, Y: 2, Z: 2}, P1: r3.Vec{X: 9, Y: 2, Z: 2}},
		{P0: r3.Vec{X: 2, Y: 2, Z: 2}, P1: r3.Vec{X: math.NaN()}},
	}
	results, err := idx.Batch(context.Background(), segs, 2)
	require.Error(t, err)
	assert.Nil(t, results)
	assert.True(t, errors.Is(err, wall.ErrInvalidNumeric))
	assert.Contains(t, err.Error(), "segment 1")
}

func TestBatchCancelled(t *testing.T) {
	idx := NewIndex(room(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	segs := []Segment{{P0: r3.Vec{X: 2, Y: 2, Z: 2}, P1: r3.Vec{X: 9, Y: 2, Z: 2}}}
	results, err := idx.Batch(ctx, segs, 1)
	assert.Nil(t, results)
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	idx := NewIndex(append(room(t), room(t)[0]), WithLogger(logger))
	_, err := idx.Batch(context.Background(), []Segment{{P0: r3.Vec{X: 2, Y: 2, Z: 2}, P1: r3.Vec{X: 9, Y: 2, Z: 2}}}, 1)
	require.NoError(t, err)

	out := buf.String()
	assert.True(t, strings.Contains(out, `"duplicates":1`), out)
	assert.True(t, strings.Contains(out, `"message":"batch done"`), out)
	assert.True(t, strings.Contains(out, `"hits":1`), out)
}
