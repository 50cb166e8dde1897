package format_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nicolagi/hintful/internal/diagnostic"
	"github.com/nicolagi/hintful/internal/event"
	"github.com/nicolagi/hintful/internal/format"
	"github.com/nicolagi/hintful/internal/parse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// modeOf derives the parse mode from names like snippets.hintful.diff.
func modeOf(t *testing.T, name string) parse.Mode {
	t.Helper()
	switch ext := filepath.Ext(strings.TrimSuffix(name, ".diff")); ext {
	case ".unified":
		return parse.UnifiedMode
	case ".hintful":
		return parse.HintfulMode
	case ".compat":
		return parse.CompatMode
	default:
		t.Fatalf("no parse mode for %q", name)
		return 0
	}
}

func TestRoundTrip(t *testing.T) {
	names, err := filepath.Glob(filepath.Join("testdata", "*.diff"))
	require.NoError(t, err)
	require.NotEmpty(t, names)
	for _, name := range names {
		t.Run(filepath.Base(name), func(t *testing.T) {
			input, err := os.ReadFile(name)
			require.NoError(t, err)
			var output bytes.Buffer
			err = format.Write(&output, parse.New(bytes.NewReader(input), modeOf(t, name)))
			require.NoError(t, err)
			assert.Equal(t, string(input), output.String())
		})
	}
}

func formatEvents(t *testing.T, events ...event.Event) string {
	t.Helper()
	var b bytes.Buffer
	require.NoError(t, format.Write(&b, event.Slice(events...)))
	return b.String()
}

func TestContentLine(t *testing.T) {
	key := event.HunkKey{Start: event.Pair(1, 1), Count: event.Pair(1, 1)}
	unified := event.HunkHeader{Key: key, Grammar: event.GrammarUnified}
	hintful := event.HunkHeader{Key: key, Grammar: event.GrammarHintful, Columns: 2, DeclaredLines: 2, NewlineMarkers: true}
	t.Run("unified partial line gets the default marker", func(t *testing.T) {
		got := formatEvents(t,
			unified,
			event.ContentLine{Kind: event.LeftContent, Content: "a"},
			event.ContentLine{Kind: event.LowPriorityContent, Content: "b\n"},
			event.EndHunk{Key: key},
		)
		assert.Equal(t, "@@ -1 +1 @@\n-a\n\\ No newline at end of file\n b\n", got)
	})
	t.Run("hintful lines carry markers and membership", func(t *testing.T) {
		got := formatEvents(t,
			hintful,
			event.ContentLine{Kind: event.IgnoredContent, Content: "x\r\n", Membership: []bool{false, true}},
			event.ContentLine{Kind: event.LowPriorityContent, Content: "y"},
			event.EndHunk{Key: key},
		)
		assert.Equal(t, "@@ -1 ^^2\\ +1 @@\n.=#x$\r\n.._y\\\n", got)
	})
	t.Run("prefix is repeated on marker lines", func(t *testing.T) {
		h := unified
		h.Prefix = "|"
		got := formatEvents(t,
			h,
			event.ContentLine{Meta: event.Meta{Prefix: "|"}, Kind: event.RightContent, Content: "z", Marker: "\\ Kein Zeilenumbruch\n"},
		)
		assert.Equal(t, "|@@ -1 +1 @@\n|+z\n|\\ Kein Zeilenumbruch\n", got)
	})
	t.Run("aggregates are flattened", func(t *testing.T) {
		got := formatEvents(t, event.Hunk{
			Header:   unified,
			Contents: []event.Event{event.ContentLine{Kind: event.BothContent, Content: "c\n"}},
			End:      event.EndHunk{Key: key},
		})
		assert.Equal(t, "@@ -1 +1 @@\n c\n", got)
	})
	t.Run("ignored content cannot be written as unified", func(t *testing.T) {
		var b bytes.Buffer
		err := format.Write(&b, event.Slice(unified, event.ContentLine{Kind: event.IgnoredContent, Content: "x\n"}))
		assert.Equal(t, 2, diagnostic.ExitStatus(err))
		assert.Equal(t, "@@ -1 +1 @@\n", b.String())
	})
	t.Run("content outside a hunk is an internal error", func(t *testing.T) {
		var b bytes.Buffer
		err := format.Write(&b, event.Slice(event.ContentLine{Kind: event.LeftContent, Content: "x\n"}))
		assert.Equal(t, 2, diagnostic.ExitStatus(err))
	})
}

func TestHunkHeaderCounts(t *testing.T) {
	h := event.HunkHeader{
		Key:      event.HunkKey{Start: event.Pair(7, 7), Count: event.Pair(0, 3)},
		StartRaw: event.Pair("07", "6"),
		CountRaw: event.Pair(",0", ""),
		Grammar:  event.GrammarLegacy,

		DeclaredLines: 3,
		DeclaredRaw:   "4",
		Comment:       " func",
	}
	// Raw strings are kept only while they still denote the numbers.
	assert.Equal(t, "@@ -07,0 (3) +7,3 @@ func\n", formatEvents(t, h))
}
