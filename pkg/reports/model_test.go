package reports

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/cuemby/reportwatch/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type op struct {
	kind        string
	first, last int
}

// mirrorSink replays every notification on its own ID list so the tests can
// check that the notifications alone describe the transition.
type mirrorSink struct {
	t      *testing.T
	model  *Model
	mirror []int32
	ops    []op
}

func (s *mirrorSink) RowsInserted(first, last int) {
	s.ops = append(s.ops, op{"insert", first, last})
	ids := make([]int32, 0, last-first+1)
	for i := first; i <= last; i++ {
		ids = append(ids, s.model.At(i).ID)
	}
	s.mirror = append(s.mirror[:first], append(ids, s.mirror[first:]...)...)
}

func (s *mirrorSink) RowsRemoved(first, last int) {
	s.ops = append(s.ops, op{"remove", first, last})
	for i := first; i <= last; i++ {
		require.Equal(s.t, s.mirror[i], s.model.At(i).ID, "rows must still be readable")
	}
	s.mirror = append(s.mirror[:first], s.mirror[last+1:]...)
}

func (s *mirrorSink) RowsChanged(first, last int, hint Field) {
	s.ops = append(s.ops, op{"change", first, last})
	assert.Equal(s.t, FieldRepeat, hint)
}

func (s *mirrorSink) Reset() {
	s.ops = append(s.ops, op{"reset", 0, 0})
	s.mirror = nil
}

type categorySet map[string]int

func (c categorySet) Add(name string, enabled bool) {
	c[name]++
}

func newTestModel(t *testing.T) (*Model, *mirrorSink, categorySet) {
	cats := categorySet{}
	m := NewModel(cats)
	s := &mirrorSink{t: t, model: m}
	m.AddSink(s)
	return m, s, cats
}

func reportList(ids ...int32) []types.Report {
	out := make([]types.Report, len(ids))
	for i, id := range ids {
		out[i] = types.Report{ID: id, Text: "event", Type: "TYPE"}
	}
	return out
}

func modelIDs(m *Model) []int32 {
	var out []int32
	for _, ev := range m.Events() {
		out = append(out, ev.ID)
	}
	return out
}

func TestUpdateSlidingWindow(t *testing.T) {
	m, s, _ := newTestModel(t)
	m.Update(reportList(1, 2, 3))
	s.ops = nil

	m.Update(reportList(2, 3, 4))

	assert.Equal(t, []int32{2, 3, 4}, modelIDs(m))
	assert.Equal(t, []op{
		{"remove", 0, 0},
		{"change", 0, 1},
		{"insert", 2, 2},
	}, s.ops)
}

func TestUpdateCoalescesTrailingInsert(t *testing.T) {
	m, s, _ := newTestModel(t)
	m.Update(reportList(1, 2))
	s.ops = nil

	m.Update(reportList(1, 2, 3, 4, 5, 6, 7))

	assert.Equal(t, []op{
		{"change", 0, 1},
		{"insert", 2, 6},
	}, s.ops)
}

func TestUpdateIdempotent(t *testing.T) {
	m, s, _ := newTestModel(t)
	list := reportList(3, 5, 8, 13)
	m.Update(list)
	s.ops = nil

	m.Update(list)

	assert.Equal(t, []op{{"change", 0, 3}}, s.ops)
}

func TestUpdateEmptyRemoteRemovesAll(t *testing.T) {
	m, s, _ := newTestModel(t)
	m.Update(reportList(1, 2, 3))
	s.ops = nil

	m.Update(nil)

	assert.Equal(t, []op{{"remove", 0, 2}}, s.ops)
	assert.Equal(t, 0, m.Len())
}

func TestUpdateTrailingRemoval(t *testing.T) {
	m, s, _ := newTestModel(t)
	m.Update(reportList(1, 2, 3))
	s.ops = nil

	require.NotPanics(t, func() { m.Update(reportList(1, 2)) })

	assert.Equal(t, []int32{1, 2}, modelIDs(m))
	assert.Equal(t, []op{
		{"change", 0, 1},
		{"remove", 2, 2},
	}, s.ops)
	assert.Equal(t, modelIDs(m), s.mirror)
}

func TestUpdateSubsetWithLowerMaximum(t *testing.T) {
	m, s, _ := newTestModel(t)
	m.Update(reportList(1, 2, 3, 4, 5, 6))
	s.ops = nil

	m.Update(reportList(2, 4))

	assert.Equal(t, []int32{2, 4}, modelIDs(m))
	assert.Equal(t, []op{
		{"remove", 0, 0},
		{"change", 0, 0},
		{"remove", 1, 1},
		{"change", 1, 1},
		{"remove", 2, 3},
	}, s.ops)
	assert.Equal(t, modelIDs(m), s.mirror)
}

func TestUpdateDisjointRemoteInsertsOnce(t *testing.T) {
	m, s, _ := newTestModel(t)
	m.Update(reportList(1, 2))
	s.ops = nil

	m.Update(reportList(10, 11, 12))

	assert.Equal(t, []op{
		{"remove", 0, 1},
		{"insert", 0, 2},
	}, s.ops)
	assert.Equal(t, []int32{10, 11, 12}, modelIDs(m))
}

func TestUpdateIntoEmptyModel(t *testing.T) {
	m, s, cats := newTestModel(t)

	list := []types.Report{
		{ID: 1, Type: "A"},
		{ID: 2, Type: "B"},
		{ID: 4, Type: "A"},
	}
	m.Update(list)

	assert.Equal(t, []op{{"insert", 0, 2}}, s.ops)
	assert.Equal(t, categorySet{"A": 2, "B": 1}, cats)
}

func TestUpdateInsertsInGaps(t *testing.T) {
	m, s, _ := newTestModel(t)
	m.Update(reportList(2, 6))
	s.ops = nil

	m.Update(reportList(1, 2, 3, 4, 6, 7))

	assert.Equal(t, []op{
		{"insert", 0, 0},
		{"change", 1, 1},
		{"insert", 2, 3},
		{"change", 4, 4},
		{"insert", 5, 5},
	}, s.ops)
	assert.Equal(t, []int32{1, 2, 3, 4, 6, 7}, modelIDs(m))
}

func TestUpdateOnlyTouchesRepeat(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.Update([]types.Report{{ID: 1, Text: "Urist has been found dead.", Type: "DEATH", Color: 4, Year: 201, Repeat: 0}})
	before := m.At(0)

	m.Update([]types.Report{{ID: 1, Text: "changed text", Type: "OTHER", Color: 1, Year: 5, Repeat: 4}})

	after := m.At(0)
	assert.Equal(t, int32(4), after.Repeat)
	after.Repeat = before.Repeat
	assert.Equal(t, before, after)
}

func TestClear(t *testing.T) {
	m, s, _ := newTestModel(t)
	m.Update(reportList(1, 2))
	s.ops = nil

	m.Clear()

	assert.Equal(t, 0, m.Len())
	assert.Equal(t, []op{{"reset", 0, 0}}, s.ops)
}

func TestIndexOf(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.Update(reportList(2, 4, 9))

	assert.Equal(t, 1, m.IndexOf(4))
	assert.Equal(t, -1, m.IndexOf(5))
	assert.Equal(t, -1, m.IndexOf(10))
}

func randomIDs(rng *rand.Rand) []int32 {
	seen := map[int32]bool{}
	n := rng.Intn(20)
	var ids []int32
	for len(ids) < n {
		id := int32(rng.Intn(40))
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// TestUpdateReplayMatchesRemote checks, over random sorted sequences, that
// replaying the notifications reproduces the remote ID sequence and that runs
// are maximal.
func TestUpdateReplayMatchesRemote(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for iter := 0; iter < 500; iter++ {
		m, s, _ := newTestModel(t)
		local := randomIDs(rng)
		m.Update(reportList(local...))
		require.Equal(t, len(local), len(s.mirror))

		s.ops = nil
		remote := randomIDs(rng)
		m.Update(reportList(remote...))

		got := modelIDs(m)
		if len(remote) == 0 {
			assert.Empty(t, got)
			assert.Empty(t, s.mirror)
		} else {
			assert.Equal(t, remote, got)
			assert.Equal(t, remote, s.mirror)
		}

		for i := 1; i < len(s.ops); i++ {
			assert.NotEqual(t, s.ops[i-1].kind, s.ops[i].kind, "adjacent runs of the same kind must be merged: %v", s.ops)
		}
	}
}
