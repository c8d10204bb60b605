package gamelog

import (
	"context"
	"testing"
	"time"

	"github.com/cuemby/reportwatch/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAssignsIncreasingIDs(t *testing.T) {
	l := New(Options{Start: 125 * types.TicksPerYear})

	a := l.Append(Entry{Text: "one", Type: "A"})
	l.Advance(types.TicksPerDay)
	b := l.Append(Entry{Text: "two", Type: "B", Report: true, Color: 12})

	assert.Equal(t, int32(0), a.ID)
	assert.Equal(t, int32(1), b.ID)
	assert.Equal(t, int32(125), b.Year)
	assert.Equal(t, int32(types.TicksPerDay), b.Time)
	assert.Equal(t, int32(4), b.Color, "colour is masked to 0-7")
	assert.Len(t, l.Announcements(), 2)
	assert.Len(t, l.Reports(), 1)
}

func TestAppendCoalescesRepeats(t *testing.T) {
	l := New(Options{})
	l.Append(Entry{Text: "kitten", Type: "BIRTH", Report: true})
	l.Append(Entry{Text: "kitten", Type: "BIRTH", Report: true})
	r := l.Append(Entry{Text: "kitten", Type: "BIRTH", Report: true})

	assert.Equal(t, int32(2), r.Repeat)
	require.Len(t, l.Announcements(), 1)
	assert.Equal(t, int32(2), l.Announcements()[0].Repeat)
	assert.Equal(t, int32(2), l.Reports()[0].Repeat)

	l.Append(Entry{Text: "kitten", Type: "OTHER"})
	assert.Len(t, l.Announcements(), 2, "different type is a new entry")
}

func TestRetention(t *testing.T) {
	l := New(Options{Retention: 3})
	for i := 0; i < 5; i++ {
		l.Append(Entry{Text: string(rune('a' + i)), Type: "T"})
	}

	list := l.Announcements()
	require.Len(t, list, 3)
	assert.Equal(t, []int32{2, 3, 4}, []int32{list[0].ID, list[1].ID, list[2].ID})
}

func TestListsAreCopies(t *testing.T) {
	l := New(Options{})
	l.Append(Entry{Text: "x", Type: "T"})

	list := l.Announcements()
	list[0].Text = "changed"
	assert.Equal(t, "x", l.Announcements()[0].Text)
}

func TestParseScript(t *testing.T) {
	s, err := ParseScript([]byte(DefaultScript))
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, s.StepDuration())
	assert.Equal(t, int32(125), s.StartYear)
	assert.True(t, s.Loop)
	assert.NotEmpty(t, s.Entries)

	_, err = ParseScript([]byte("entries: []"))
	assert.Error(t, err)

	_, err = ParseScript([]byte("step: soon\nentries: [{text: a, type: b}]"))
	assert.Error(t, err)
}

func TestPlayStopsAtEnd(t *testing.T) {
	s, err := ParseScript([]byte(`
step: 5ms
ticks_per_step: 100
entries:
  - {text: a, type: T}
  - {text: b, type: T, report: true}
`))
	require.NoError(t, err)

	l := New(Options{})
	var appended []types.Report
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, s.Play(ctx, l, func(r types.Report) { appended = append(appended, r) }))
	assert.Len(t, appended, 2)
	assert.Equal(t, types.Time(200), l.Now())
	assert.Len(t, l.Reports(), 1)
}
