package diff_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/nicolagi/hintful/internal/diff"
	"github.com/nicolagi/hintful/internal/event"
	"github.com/nicolagi/hintful/internal/format"
	"github.com/nicolagi/hintful/internal/parse"
	"github.com/nicolagi/hintful/internal/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unified(t *testing.T, a, b string, contextLines int) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, format.Write(&buf, diff.Unified(a, b, contextLines)))
	return buf.String()
}

func numbered(replace map[string]string) string {
	var b strings.Builder
	for _, n := range []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10"} {
		if r, ok := replace[n]; ok {
			n = r
		}
		b.WriteString(n + "\n")
	}
	return b.String()
}

func TestUnifiedSameLinesNoDiff(t *testing.T) {
	for _, contextLines := range []int{0, 1, 3} {
		events, err := event.Collect(diff.Unified("a\nb\n", "a\nb\n", contextLines))
		require.NoError(t, err)
		assert.Empty(t, events)
	}
}

func TestUnified(t *testing.T) {
	testCases := []struct {
		name         string
		a, b         string
		contextLines int
		want         string
	}{
		{
			name:         "one change",
			a:            "a\nb\nc\n",
			b:            "a\nB\nc\n",
			contextLines: 1,
			want:         "@@ -1,3 +1,3 @@\n a\n-b\n+B\n c\n",
		},
		{
			name:         "no context",
			a:            "a\nb\nc\n",
			b:            "a\nB\nc\n",
			contextLines: 0,
			want:         "@@ -2 +2 @@\n-b\n+B\n",
		},
		{
			name:         "distant changes make two hunks",
			a:            numbered(nil),
			b:            numbered(map[string]string{"2": "X", "9": "Y"}),
			contextLines: 1,
			want: "" +
				"@@ -1,3 +1,3 @@\n 1\n-2\n+X\n 3\n" +
				"@@ -8,3 +8,3 @@\n 8\n-9\n+Y\n 10\n",
		},
		{
			name:         "close changes share a hunk",
			a:            numbered(nil),
			b:            numbered(map[string]string{"2": "X", "5": "Y"}),
			contextLines: 1,
			want:         "@@ -1,6 +1,6 @@\n 1\n-2\n+X\n 3\n 4\n-5\n+Y\n 6\n",
		},
		{
			name:         "empty left side",
			a:            "",
			b:            "a\nb\n",
			contextLines: 3,
			want:         "@@ -0,0 +1,2 @@\n+a\n+b\n",
		},
		{
			name:         "empty right side",
			a:            "a\n",
			b:            "",
			contextLines: 3,
			want:         "@@ -1 +0,0 @@\n-a\n",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := unified(t, tc.a, tc.b, tc.contextLines)
			assert.Equal(t, tc.want, got)
			// The output is itself a valid diff.
			err := event.Drain(validate.Hunks(parse.New(strings.NewReader(got), parse.UnifiedMode)))
			assert.NoError(t, err)
		})
	}
}
