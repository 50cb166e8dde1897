// Package parse turns diff text into a stream of events.
//
// The parser reads one line at a time, with one line of lookahead for the
// no newline marker and for the two-line headers (--- and +++, rename from
// and rename to). Outside hunks, each line is classified by trying the
// header productions in a fixed order. A hunk header switches to the hunk
// sub-parser for its grammar, which reads the lines the header announces
// and then emits EndHunk. A unified hunk also ends at the first line that
// is not hunk content, leaving count mismatches to the validator.
package parse

import (
	"errors"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/nicolagi/hintful/internal/diagnostic"
	"github.com/nicolagi/hintful/internal/event"
)

// Mode selects the dialects accepted by the parser.
type Mode int

const (
	// Only diff --git file comparisons with unified hunks.
	UnifiedMode Mode = iota
	// Only diff --hintful file comparisons with hintful hunks.
	HintfulMode
	// Hintful lines prefixed with "|", unified lines without prefix.
	CompatMode
)

func (m Mode) String() string {
	switch m {
	case UnifiedMode:
		return "unified"
	case HintfulMode:
		return "hintful"
	case CompatMode:
		return "compat"
	default:
		return "Mode(" + strconv.Itoa(int(m)) + ")"
	}
}

var (
	diffHeaderLine  = regexp.MustCompile(`^diff --(git|hintful) (\S+) (\S+)$`)
	indexLine       = regexp.MustCompile(`^index ([0-9a-f]{7,})\.\.([0-9a-f]{7,})( +[0-7]{6})?$`)
	fileModeLine    = regexp.MustCompile(`^(new|deleted) file mode (.*)$`)
	similarityLine  = regexp.MustCompile(`^similarity index ([0-9]+)%$`)
	renameFromLine  = regexp.MustCompile(`^rename from (.*)$`)
	renameToLine    = regexp.MustCompile(`^rename to (.*)$`)
	minusLabelLine  = regexp.MustCompile(`^--- (.*)$`)
	plusLabelLine   = regexp.MustCompile(`^\+\+\+ (.*)$`)
	unifiedHunkLine = regexp.MustCompile(`^@@ -([0-9]+)(,[0-9]+)? \+([0-9]+)(,[0-9]+)? @@(.*)$`)
	hintfulHunkLine = regexp.MustCompile(`^@@ -([0-9]+)(,[0-9]+)? (\^*)([0-9]+)(\\?) \+([0-9]+)(,[0-9]+)? @@(.*)$`)
	legacyHunkLine  = regexp.MustCompile(`^@@ -([0-9]+)(,[0-9]+)? \(([0-9]+)\) \+([0-9]+)(,[0-9]+)? @@(.*)$`)
)

type parser struct {
	lines *glue
	mode  Mode

	queue []event.Event
	err   error
	done  bool

	// The open file comparison, nil before the first file header.
	file    *event.FileHeader
	sawHunk bool

	// Without file headers, the labels of the latest ---/+++ pair.
	labelKey event.Sides[string]

	// Non-nil while reading a hunk body.
	hunk *hunkState
}

// New returns a stream of the events described by the diff text in r.
func New(r io.Reader, mode Mode) event.Stream {
	return &parser{
		lines: &glue{src: newLineReader(r, mode == CompatMode)},
		mode:  mode,
	}
}

func (p *parser) Next() (event.Event, error) {
	for len(p.queue) == 0 {
		if p.err != nil {
			return nil, p.err
		}
		if p.done {
			return nil, io.EOF
		}
		l, err := p.lines.next()
		switch {
		case errors.Is(err, io.EOF):
			p.done = true
			p.err = p.finish()
		case err != nil:
			p.err = err
		case p.hunk != nil:
			p.err = p.hunkLine(l)
		default:
			p.err = p.line(l)
		}
	}
	ev := p.queue[0]
	p.queue = p.queue[1:]
	return ev, nil
}

func (p *parser) emit(events ...event.Event) {
	p.queue = append(p.queue, events...)
}

func (p *parser) finish() error {
	if p.hunk != nil && p.hunk.header.Grammar == event.GrammarUnified {
		if err := p.endHunk(); err != nil {
			return err
		}
	}
	if p.hunk != nil {
		return diagnostic.Grammarf(diagnostic.CodeTruncatedHunk, p.hunk.header.Line, "", "input ends inside the hunk, %d lines short", p.hunk.missing())
	}
	p.closeFile()
	return nil
}

func (p *parser) closeFile() {
	if p.file != nil {
		p.emit(event.EndFile{
			Meta: p.file.Meta,
			File: p.file.Paths,
		})
		p.file = nil
	}
}

// dialect returns the dialect expected for a hunk with the given prefix.
func (p *parser) dialect(prefix string) event.Dialect {
	if p.file != nil {
		return p.file.Dialect
	}
	switch p.mode {
	case HintfulMode:
		return event.Hintful
	case CompatMode:
		if prefix == CompatPrefix {
			return event.Hintful
		}
	}
	return event.Unified
}

// fileKey identifies the open file comparison: its header paths or, for
// diffs without file headers, its labels.
func (p *parser) fileKey() event.Sides[string] {
	if p.file == nil {
		return p.labelKey
	}
	return p.file.Paths
}

func looksLikeContent(d event.Dialect, body string) bool {
	chars := "-+ "
	if d == event.Hintful {
		chars = "-+ _#<>.=^,$:"
	}
	return strings.IndexByte(chars, body[0]) != -1
}

func (p *parser) line(l line) error {
	body, eol := splitEOL(l.body)
	content := looksLikeContent(p.dialect(l.prefix), l.body)
	if l.marker != "" && !content {
		return diagnostic.Grammarf(diagnostic.CodeOrphanNewlineMarker, l.markerNum, l.prefix+l.marker, "no newline marker does not follow a content line")
	}
	switch {
	case strings.HasPrefix(body, "@@"):
		return p.hunkHeader(l, body, eol)
	case minusLabelLine.MatchString(body):
		return p.labels(l, body, eol)
	case similarityLine.MatchString(body):
		if err := p.extendedHeader(l); err != nil {
			return err
		}
		m := similarityLine.FindStringSubmatch(body)
		p.emit(event.SimilarityIndex{
			Meta:    p.meta(l),
			File:    p.fileKey(),
			Percent: m[1],
			EOL:     eol,
		})
		return nil
	case renameFromLine.MatchString(body):
		return p.rename(l, body, eol)
	case content:
		return diagnostic.Grammarf(diagnostic.CodeContentOutsideHunk, l.num, l.raw(), "hunk content without a hunk header")
	case indexLine.MatchString(body):
		if err := p.extendedHeader(l); err != nil {
			return err
		}
		m := indexLine.FindStringSubmatch(body)
		p.emit(event.IndexLine{
			Meta: p.meta(l),
			File: p.fileKey(),
			OIDs: event.Pair(m[1], m[2]),
			Mode: m[3],
			EOL:  eol,
		})
		return nil
	case fileModeLine.MatchString(body):
		if err := p.extendedHeader(l); err != nil {
			return err
		}
		m := fileModeLine.FindStringSubmatch(body)
		side := event.Right
		if m[1] == "deleted" {
			side = event.Left
		}
		p.emit(event.FileModeChange{
			Meta: p.meta(l),
			File: p.fileKey(),
			Side: side,
			Mode: m[2],
			EOL:  eol,
		})
		return nil
	case diffHeaderLine.MatchString(body):
		return p.fileHeader(l, body, eol)
	default:
		return diagnostic.Grammarf(diagnostic.CodeUnrecognizedLine, l.num, l.raw(), "cannot parse line")
	}
}

func (p *parser) meta(l line) event.Meta {
	return event.Meta{Prefix: l.prefix, Line: l.num}
}

// extendedHeader checks that a header line fits in the open file comparison.
func (p *parser) extendedHeader(l line) error {
	if p.file == nil {
		return nil
	}
	if l.prefix != p.file.Prefix {
		return diagnostic.Grammarf(diagnostic.CodePrefixMismatch, l.num, l.raw(), "prefix differs from that of the file header at line %d", p.file.Line)
	}
	if p.sawHunk {
		return diagnostic.Grammarf(diagnostic.CodeHeaderAfterHunk, l.num, l.raw(), "extended header after the first hunk of a file comparison")
	}
	return nil
}

func (p *parser) fileHeader(l line, body, eol string) error {
	m := diffHeaderLine.FindStringSubmatch(body)
	d := event.Unified
	if m[1] == "hintful" {
		d = event.Hintful
	}
	var want event.Dialect
	switch p.mode {
	case UnifiedMode:
		want = event.Unified
	case HintfulMode:
		want = event.Hintful
	case CompatMode:
		want = event.Unified
		if l.prefix == CompatPrefix {
			want = event.Hintful
		}
	}
	if d != want {
		return diagnostic.Grammarf(diagnostic.CodeDialectMismatch, l.num, l.raw(), "expected a %s file comparison", want)
	}
	p.closeFile()
	h := event.FileHeader{
		Meta:    p.meta(l),
		Dialect: d,
		Paths:   event.Pair(m[2], m[3]),
		EOL:     eol,
	}
	p.file = &h
	p.sawHunk = false
	p.emit(h)
	return nil
}

// second reads the second line of a two-line header.
func (p *parser) second(first line, code string, re *regexp.Regexp) (match []string, eol string, err error) {
	l, err := p.lines.next()
	if errors.Is(err, io.EOF) {
		return nil, "", diagnostic.Grammarf(code, first.num, first.raw(), "input ends after the first line of a two-line header")
	}
	if err != nil {
		return nil, "", err
	}
	if l.prefix != first.prefix {
		return nil, "", diagnostic.Grammarf(diagnostic.CodePrefixMismatch, l.num, l.raw(), "prefix differs from that of line %d", first.num)
	}
	if l.marker != "" {
		return nil, "", diagnostic.Grammarf(diagnostic.CodeOrphanNewlineMarker, l.markerNum, l.prefix+l.marker, "no newline marker does not follow a content line")
	}
	body, eol := splitEOL(l.body)
	match = re.FindStringSubmatch(body)
	if match == nil {
		return nil, "", diagnostic.Grammarf(code, l.num, l.raw(), "unexpected second line of a two-line header")
	}
	return match, eol, nil
}

func (p *parser) labels(l line, body, eol string) error {
	if err := p.extendedHeader(l); err != nil {
		return err
	}
	m2, eol2, err := p.second(l, diagnostic.CodeMissingPlusLabel, plusLabelLine)
	if err != nil {
		return err
	}
	m := minusLabelLine.FindStringSubmatch(body)
	if p.file == nil {
		p.labelKey = event.Pair(m[1], m2[1])
	}
	p.emit(event.Labels{
		Meta:   p.meta(l),
		File:   p.fileKey(),
		Labels: event.Pair(m[1], m2[1]),
		EOL:    event.Pair(eol, eol2),
	})
	return nil
}

func (p *parser) rename(l line, body, eol string) error {
	if err := p.extendedHeader(l); err != nil {
		return err
	}
	m2, eol2, err := p.second(l, diagnostic.CodeMissingRenameTo, renameToLine)
	if err != nil {
		return err
	}
	m := renameFromLine.FindStringSubmatch(body)
	p.emit(event.Rename{
		Meta:  p.meta(l),
		File:  p.fileKey(),
		Paths: event.Pair(m[1], m2[1]),
		EOL:   event.Pair(eol, eol2),
	})
	return nil
}

func (p *parser) hunkHeader(l line, body, eol string) error {
	if p.file != nil && l.prefix != p.file.Prefix {
		return diagnostic.Grammarf(diagnostic.CodePrefixMismatch, l.num, l.raw(), "prefix differs from that of the file header at line %d", p.file.Line)
	}
	h := event.HunkHeader{
		Meta: p.meta(l),
		EOL:  eol,
	}
	var startLeft, countLeft, startRight, countRight string
	if m := unifiedHunkLine.FindStringSubmatch(body); m != nil {
		h.Grammar = event.GrammarUnified
		startLeft, countLeft, startRight, countRight, h.Comment = m[1], m[2], m[3], m[4], m[5]
	} else if m := hintfulHunkLine.FindStringSubmatch(body); m != nil {
		h.Grammar = event.GrammarHintful
		startLeft, countLeft, startRight, countRight, h.Comment = m[1], m[2], m[6], m[7], m[8]
		h.Columns = len(m[3])
		h.DeclaredRaw = m[4]
		h.NewlineMarkers = m[5] != ""
	} else if m := legacyHunkLine.FindStringSubmatch(body); m != nil {
		h.Grammar = event.GrammarLegacy
		startLeft, countLeft, startRight, countRight, h.Comment = m[1], m[2], m[4], m[5], m[6]
		h.DeclaredRaw = m[3]
		h.NewlineMarkers = true
	} else {
		return diagnostic.Grammarf(diagnostic.CodeHunkHeader, l.num, l.raw(), "corrupt hunk header")
	}
	if d := p.dialect(l.prefix); h.Grammar.Dialect() != d {
		return diagnostic.Grammarf(diagnostic.CodeDialectMismatch, l.num, l.raw(), "%s hunk header where %s is expected", h.Grammar, d)
	}
	if h.Columns%2 != 0 {
		return diagnostic.Grammarf(diagnostic.CodeSnippetColumn, l.num, l.raw(), "odd number of snippet columns")
	}
	h.StartRaw = event.Pair(startLeft, startRight)
	h.CountRaw = event.Pair(countLeft, countRight)
	numbers := []struct {
		raw string
		dst *int
	}{
		{startLeft, &h.Key.Start[event.Left]},
		{startRight, &h.Key.Start[event.Right]},
		{strings.TrimPrefix(countLeft, ","), &h.Key.Count[event.Left]},
		{strings.TrimPrefix(countRight, ","), &h.Key.Count[event.Right]},
		{h.DeclaredRaw, &h.DeclaredLines},
	}
	for _, n := range numbers {
		if n.raw == "" {
			continue
		}
		v, err := strconv.Atoi(n.raw)
		if err != nil {
			return diagnostic.Grammarf(diagnostic.CodeHunkHeader, l.num, l.raw(), "number out of range")
		}
		*n.dst = v
	}
	for _, s := range event.BothSides {
		if h.CountRaw[s] == "" {
			h.Key.Count[s] = 1
		}
	}
	h.Key.File = p.fileKey()
	p.sawHunk = true
	p.emit(h)
	p.hunk = newHunkState(h)
	if p.hunk.complete() {
		return p.endHunk()
	}
	return nil
}
