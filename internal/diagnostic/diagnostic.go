// Package diagnostic defines the errors reported to users of the diff tools.
//
// Bad input is reported as an *Error, either of class Grammar (a line does
// not match any production the parser expects at that point) or of class
// Invariant (the lines parse, but violate a semantic rule such as declared
// line counts or snippet identity). Each carries a stable mnemonic code and
// the line numbers involved. Bugs in the pipeline itself are reported as
// *InternalError, which has no code and maps to a different exit status.
package diagnostic

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type Class int

const (
	Grammar Class = iota + 1
	Invariant
)

func (c Class) String() string {
	switch c {
	case Grammar:
		return "grammar"
	case Invariant:
		return "invariant"
	default:
		return "Class(" + strconv.Itoa(int(c)) + ")"
	}
}

// Error codes. These are part of the command line interface: scripts and
// tests match on them, so they must not change.
const (
	CodeUnterminatedLine       = "unterminated-line"
	CodeOrphanNewlineMarker    = "orphan-newline-marker"
	CodeForbiddenNewlineMarker = "forbidden-newline-marker"
	CodePrefixMismatch         = "prefix-mismatch"
	CodeHunkHeader             = "hunk-header"
	CodeMissingPlusLabel       = "missing-plus-label"
	CodeMissingRenameTo        = "missing-rename-to"
	CodeContentOutsideHunk     = "content-outside-hunk"
	CodeUnrecognizedLine       = "unrecognized-line"
	CodeHunkLine               = "hunk-line"
	CodeTruncatedHunk          = "truncated-hunk"
	CodeHeaderAfterHunk        = "header-after-hunk"
	CodeDialectMismatch        = "dialect-mismatch"
	CodeSnippetColumn          = "snippet-column"
	CodeSnippetUnclosed        = "snippet-unclosed"
	CodeCarriageReturn         = "carriage-return"
	CodeGroupPrefix            = "group-prefix"
	CodeUnexpectedEOF          = "unexpected-eof"

	CodeLineCount             = "line-count"
	CodeContentAfterNoNewline = "content-after-no-newline"
	CodeSplitTerminator       = "split-terminator"
	CodeHunkOrder             = "hunk-order"
	CodeSnippetMismatch       = "snippet-mismatch"
	CodeCompatFieldMismatch   = "compat-field-mismatch"
	CodeCompatContentMismatch = "compat-content-mismatch"
	CodeCompatOrder           = "compat-order"
	CodeCompatDangling        = "compat-dangling"
	CodeRoundTrip             = "roundtrip"
)

// Error is a grammar or invariant violation in the input.
type Error struct {
	Class Class
	Code  string

	// Input lines involved, 1-based, in input order. Two lines are
	// given when the error relates two occurrences of something.
	Lines []int

	// The offending raw line, if any.
	Text string

	Msg string
}

func (e *Error) Error() string {
	var b strings.Builder
	switch len(e.Lines) {
	case 0:
	case 1:
		fmt.Fprintf(&b, "line %d: ", e.Lines[0])
	default:
		b.WriteString("lines ")
		for i, n := range e.Lines {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(strconv.Itoa(n))
		}
		b.WriteString(": ")
	}
	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Msg)
	if e.Text != "" {
		fmt.Fprintf(&b, ": %q", e.Text)
	}
	return b.String()
}

// Grammarf returns a grammar error about the given raw line.
func Grammarf(code string, line int, text string, format string, a ...interface{}) *Error {
	return &Error{
		Class: Grammar,
		Code:  code,
		Lines: []int{line},
		Text:  text,
		Msg:   fmt.Sprintf(format, a...),
	}
}

// Invariantf returns an invariant error citing the given lines.
// Zero line numbers (synthesized events) are left out.
func Invariantf(code string, lines []int, format string, a ...interface{}) *Error {
	var cited []int
	for _, n := range lines {
		if n > 0 {
			cited = append(cited, n)
		}
	}
	return &Error{
		Class: Invariant,
		Code:  code,
		Lines: cited,
		Msg:   fmt.Sprintf(format, a...),
	}
}

// InternalError signals a bug in a transform chain, never bad input.
type InternalError struct {
	msg string
}

func (e *InternalError) Error() string {
	return "internal error: " + e.msg
}

func Internalf(format string, a ...interface{}) error {
	return &InternalError{msg: fmt.Sprintf(format, a...)}
}

// CodeOf returns the code of the *Error wrapped by err, or "" if there is none.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// ExitStatus maps an error to the exit status of the command line tools:
// 0 for success, 2 for internal errors, 1 for everything else.
func ExitStatus(err error) int {
	if err == nil {
		return 0
	}
	var ie *InternalError
	if errors.As(err, &ie) {
		return 2
	}
	return 1
}
