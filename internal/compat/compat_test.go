package compat_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/nicolagi/hintful/internal/compat"
	"github.com/nicolagi/hintful/internal/diagnostic"
	"github.com/nicolagi/hintful/internal/event"
	"github.com/nicolagi/hintful/internal/format"
	"github.com/nicolagi/hintful/internal/group"
	"github.com/nicolagi/hintful/internal/merge"
	"github.com/nicolagi/hintful/internal/parse"
	"github.com/nicolagi/hintful/internal/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func grouped(input string, mode parse.Mode) event.Stream {
	return group.Files(group.Hunks(parse.New(strings.NewReader(input), mode)))
}

func flat(s event.Stream) event.Stream {
	return group.UngroupHunks(group.UngroupFiles(s))
}

func write(t *testing.T, s event.Stream) string {
	t.Helper()
	var b bytes.Buffer
	require.NoError(t, format.Write(&b, s))
	return b.String()
}

func TestApplyPrefixedFiles(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{
			name: "file comparisons",
			input: "" +
				"|diff --hintful a/f b/f\n" +
				"|@@ -1,2 3\\ +1,2 @@ fn\n" +
				"|-same$\n" +
				"|_same$\n" +
				"|+new$\n" +
				"|@@ -9 1\\ +9 @@\n" +
				"| nine$\n" +
				"diff --git a/f b/f\n" +
				"index 1234567..89abcde\n" +
				"@@ -1,2 +1,2 @@\n" +
				"-same\n" +
				" same\n" +
				"+new\n" +
				"@@ -5 +5 @@\n" +
				" five\n",
			want: "" +
				"diff --git a/f b/f\n" +
				"index 1234567..89abcde\n" +
				"@@ -1,2 +1,2 @@ fn\n" +
				"-same\n" +
				" same\n" +
				"+new\n" +
				"@@ -5 +5 @@\n" +
				" five\n",
		},
		{
			name: "hunks without file header",
			input: "" +
				"|@@ -20 1\\ +20 @@ x\n" +
				"|_twenty$\n" +
				"@@ -20 +20 @@\n" +
				" twenty\n",
			want: "" +
				"@@ -20 +20 @@ x\n" +
				" twenty\n",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := write(t, merge.Unprefixed(flat(compat.ApplyPrefixedFiles(grouped(tc.input, parse.CompatMode)))))
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestApplyPrefixedFilesNeedsGroups(t *testing.T) {
	in := event.Slice(event.HunkHeader{Meta: event.Meta{Prefix: parse.CompatPrefix}})
	_, err := event.Collect(compat.ApplyPrefixedFiles(in))
	assert.Equal(t, 2, diagnostic.ExitStatus(err))
}

func TestDuplicate(t *testing.T) {
	input := "" +
		"diff --hintful a/f b/f\n" +
		"@@ -1 2\\ +1 @@\n" +
		"_x$\n" +
		"#y$\n"
	want := "" +
		"|diff --hintful a/f b/f\n" +
		"|@@ -1 2\\ +1 @@\n" +
		"|_x$\n" +
		"|#y$\n" +
		"diff --git a/f b/f\n" +
		"@@ -1 +1 @@\n" +
		" x\n"
	got := write(t, merge.Unprefixed(flat(compat.Duplicate(grouped(input, parse.HintfulMode)))))
	assert.Equal(t, want, got)

	// Both representations describe the same patch.
	s := parse.New(strings.NewReader(got), parse.CompatMode)
	assert.NoError(t, event.Drain(validate.Representations(validate.Hunks(s))))
}

func TestDuplicateRejectsPrefixedInput(t *testing.T) {
	in := event.Slice(event.Labels{Meta: event.Meta{Prefix: parse.CompatPrefix}})
	_, err := event.Collect(compat.Duplicate(in))
	assert.Equal(t, 2, diagnostic.ExitStatus(err))
}
