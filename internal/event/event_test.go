package event_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nicolagi/hintful/internal/event"
	"github.com/stretchr/testify/assert"
)

func TestReprefix(t *testing.T) {
	key := event.HunkKey{
		File:  event.Pair("a/x", "b/x"),
		Start: event.Pair(1, 1),
		Count: event.Pair(1, 1),
	}
	hunk := event.Hunk{
		Meta:   event.Meta{Prefix: "|", Line: 3},
		Header: event.HunkHeader{Meta: event.Meta{Prefix: "|", Line: 3}, Key: key},
		Contents: []event.Event{
			event.ContentLine{Meta: event.Meta{Prefix: "|", Line: 4}, Kind: event.LeftContent, Content: "a\n"},
			event.ContentLine{Meta: event.Meta{Prefix: "|", Line: 5}, Kind: event.RightContent, Content: "b\n"},
		},
		End: event.EndHunk{Meta: event.Meta{Prefix: "|", Line: 3}, Key: key},
	}
	got := event.Reprefix(hunk, "")
	want := event.Hunk{
		Meta:   event.Meta{Line: 3},
		Header: event.HunkHeader{Meta: event.Meta{Line: 3}, Key: key},
		Contents: []event.Event{
			event.ContentLine{Meta: event.Meta{Line: 4}, Kind: event.LeftContent, Content: "a\n"},
			event.ContentLine{Meta: event.Meta{Line: 5}, Kind: event.RightContent, Content: "b\n"},
		},
		End: event.EndHunk{Meta: event.Meta{Line: 3}, Key: key},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	// The original is left untouched.
	assert.Equal(t, "|", event.PrefixOf(hunk.Contents[0]))
	assert.Equal(t, 4, event.LineOf(got.(event.Hunk).Contents[0]))
}

func TestSides(t *testing.T) {
	p := event.Pair("old", "new")
	assert.Equal(t, "old", p[event.Left])
	assert.Equal(t, event.Pair("new", "old"), p.Flip())
	assert.Equal(t, p, p.Flip().Flip())
	assert.Equal(t, event.Right, event.Left.Flip())
}

func TestKind(t *testing.T) {
	testCases := []struct {
		kind        event.Kind
		left, right bool
		flipped     event.Kind
	}{
		{event.LeftContent, true, false, event.RightContent},
		{event.RightContent, false, true, event.LeftContent},
		{event.BothContent, true, true, event.BothContent},
		{event.LowPriorityContent, true, true, event.LowPriorityContent},
		{event.IgnoredContent, false, false, event.IgnoredContent},
	}
	for _, tc := range testCases {
		t.Run(tc.kind.String(), func(t *testing.T) {
			assert.Equal(t, tc.left, tc.kind.Has(event.Left))
			assert.Equal(t, tc.right, tc.kind.Has(event.Right))
			assert.Equal(t, tc.flipped, tc.kind.Flip())
		})
	}
}

func TestFlipColumns(t *testing.T) {
	assert.Nil(t, event.FlipColumns(nil))
	assert.Equal(t, []bool{false, true, true, false}, event.FlipColumns([]bool{true, false, false, true}))
	assert.Equal(t, event.Left, event.ColumnSide(2))
	assert.Equal(t, event.Right, event.ColumnSide(3))
}
