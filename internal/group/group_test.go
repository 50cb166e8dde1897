package group_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nicolagi/hintful/internal/diagnostic"
	"github.com/nicolagi/hintful/internal/event"
	"github.com/nicolagi/hintful/internal/group"
	"github.com/nicolagi/hintful/internal/parse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const compat = "" +
	"|diff --hintful a/f b/f\n" +
	"|index 1234567..89abcde 100644\n" +
	"|@@ -1,2 ^^4\\ +1,2 @@\n" +
	"|^,:s\n" +
	"|=. same$\n" +
	"|$,:\n" +
	"|..-old$\n" +
	"diff --git a/f b/f\n" +
	"index 1234567..89abcde 100644\n" +
	"@@ -1,2 +1,2 @@\n" +
	" same\n" +
	"-old\n" +
	"+new\n" +
	"@@ -8 +8 @@\n" +
	" tail\n"

func events(t *testing.T) []event.Event {
	t.Helper()
	evs, err := event.Collect(parse.New(strings.NewReader(compat), parse.CompatMode))
	require.NoError(t, err)
	return evs
}

func TestRoundTrip(t *testing.T) {
	flat := events(t)
	testCases := []struct {
		name  string
		stage func(event.Stream) event.Stream
	}{
		{"hunks", func(s event.Stream) event.Stream {
			return group.UngroupHunks(group.Hunks(s))
		}},
		{"files", func(s event.Stream) event.Stream {
			return group.UngroupFiles(group.Files(s))
		}},
		{"hunks in files", func(s event.Stream) event.Stream {
			return group.UngroupHunks(group.UngroupFiles(group.Files(group.Hunks(s))))
		}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := event.Collect(tc.stage(event.Slice(flat...)))
			require.NoError(t, err)
			if diff := cmp.Diff(flat, got); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestHunks(t *testing.T) {
	got, err := event.Collect(group.Hunks(event.Slice(events(t)...)))
	require.NoError(t, err)
	var hunks []event.Hunk
	for _, ev := range got {
		if h, ok := ev.(event.Hunk); ok {
			hunks = append(hunks, h)
		}
	}
	require.Len(t, hunks, 3)
	assert.Equal(t, "|", hunks[0].Prefix)
	assert.Equal(t, 3, hunks[0].Line)
	// Activation, content, deactivation, snippet end, content.
	assert.Len(t, hunks[0].Contents, 5)
	assert.Equal(t, event.Pair("same\nold\n", "same\nnew\n"), hunks[1].End.Content)
	assert.Equal(t, 14, hunks[2].Header.Line)
	assert.Len(t, hunks[2].Contents, 1)
}

func TestFiles(t *testing.T) {
	got, err := event.Collect(group.Files(group.Hunks(event.Slice(events(t)...))))
	require.NoError(t, err)
	require.Len(t, got, 2)
	prefixed := got[0].(event.File)
	unprefixed := got[1].(event.File)
	assert.Equal(t, "|", prefixed.Header.Prefix)
	assert.Len(t, prefixed.Children, 2)
	assert.IsType(t, event.IndexLine{}, prefixed.Children[0])
	assert.IsType(t, event.Hunk{}, prefixed.Children[1])
	assert.Equal(t, "", unprefixed.Header.Prefix)
	assert.Len(t, unprefixed.Children, 3)
	assert.Equal(t, 8, unprefixed.End.Line)
}

func TestErrors(t *testing.T) {
	header := event.HunkHeader{Meta: event.Meta{Prefix: "|", Line: 4}}
	file := event.FileHeader{Meta: event.Meta{Line: 2}}
	testCases := []struct {
		name   string
		stage  func(event.Stream) event.Stream
		events []event.Event
		code   string
		lines  []int
	}{
		{
			name:   "prefix inside hunk",
			stage:  group.Hunks,
			events: []event.Event{header, event.ContentLine{Meta: event.Meta{Line: 5}}},
			code:   diagnostic.CodeGroupPrefix,
			lines:  []int{4, 5},
		},
		{
			name:   "end inside hunk",
			stage:  group.Hunks,
			events: []event.Event{header, event.ContentLine{Meta: event.Meta{Prefix: "|", Line: 5}}},
			code:   diagnostic.CodeUnexpectedEOF,
			lines:  []int{4},
		},
		{
			name:   "prefix inside file",
			stage:  group.Files,
			events: []event.Event{file, event.IndexLine{Meta: event.Meta{Prefix: "|", Line: 3}}},
			code:   diagnostic.CodeGroupPrefix,
			lines:  []int{2, 3},
		},
		{
			name:   "end inside file",
			stage:  group.Files,
			events: []event.Event{file},
			code:   diagnostic.CodeUnexpectedEOF,
			lines:  []int{2},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := event.Collect(tc.stage(event.Slice(tc.events...)))
			var d *diagnostic.Error
			require.ErrorAs(t, err, &d)
			assert.Equal(t, tc.code, d.Code)
			assert.Equal(t, tc.lines, d.Lines)
		})
	}
}

func TestNestedHeaderIsInternal(t *testing.T) {
	header := event.HunkHeader{Meta: event.Meta{Line: 1}}
	_, err := event.Collect(group.Hunks(event.Slice(header, header)))
	assert.Equal(t, 2, diagnostic.ExitStatus(err))
}
