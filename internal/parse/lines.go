package parse

import (
	"bufio"
	"io"
	"strings"

	"github.com/nicolagi/hintful/internal/diagnostic"
	"github.com/pkg/errors"
)

// CompatPrefix marks the lines of the hintful representation in a compat diff.
const CompatPrefix = "|"

// physical is one input line, terminator included, with the compat prefix split off.
type physical struct {
	num    int
	prefix string
	body   string
}

func (p physical) raw() string {
	return p.prefix + p.body
}

type lineReader struct {
	r           *bufio.Reader
	n           int
	allowPrefix bool
}

func newLineReader(r io.Reader, allowPrefix bool) *lineReader {
	return &lineReader{
		r:           bufio.NewReader(r),
		allowPrefix: allowPrefix,
	}
}

func (lr *lineReader) next() (physical, error) {
	s, err := lr.r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return physical{}, errors.Wrapf(err, "could not read line %d", lr.n+1)
	}
	if s == "" {
		return physical{}, io.EOF
	}
	lr.n++
	if !strings.HasSuffix(s, "\n") {
		return physical{}, diagnostic.Grammarf(diagnostic.CodeUnterminatedLine, lr.n, s, "last line lacks a line terminator")
	}
	p := physical{num: lr.n, body: s}
	if lr.allowPrefix && strings.HasPrefix(s, CompatPrefix) {
		p.prefix = CompatPrefix
		p.body = s[len(CompatPrefix):]
	}
	return p, nil
}

// line is a physical line, possibly with the no newline marker line that
// followed it glued on.
type line struct {
	physical
	marker    string
	markerNum int
}

func (l line) raw() string {
	if l.marker == "" {
		return l.physical.raw()
	}
	return l.physical.raw() + l.prefix + l.marker
}

// glue merges each "\ No newline at end of file" line into the line before
// it. It holds at most one pending line.
type glue struct {
	src     *lineReader
	pending *physical
	ended   bool
}

func (g *glue) next() (line, error) {
	for {
		if g.ended {
			if g.pending == nil {
				return line{}, io.EOF
			}
			l := line{physical: *g.pending}
			g.pending = nil
			return l, nil
		}
		p, err := g.src.next()
		if errors.Is(err, io.EOF) {
			g.ended = true
			continue
		}
		if err != nil {
			return line{}, err
		}
		if strings.HasPrefix(p.body, `\`) {
			if g.pending == nil {
				return line{}, diagnostic.Grammarf(diagnostic.CodeOrphanNewlineMarker, p.num, p.raw(), "no newline marker does not follow a line it could apply to")
			}
			if p.prefix != g.pending.prefix {
				return line{}, diagnostic.Grammarf(diagnostic.CodePrefixMismatch, p.num, p.raw(), "no newline marker prefix differs from that of line %d", g.pending.num)
			}
			l := line{physical: *g.pending, marker: p.body, markerNum: p.num}
			g.pending = nil
			return l, nil
		}
		if g.pending != nil {
			l := line{physical: *g.pending}
			*g.pending = p
			return l, nil
		}
		g.pending = &p
	}
}

// splitEOL splits a line into its text and its \r*\n terminator.
func splitEOL(s string) (text, eol string) {
	if !strings.HasSuffix(s, "\n") {
		return s, ""
	}
	i := len(s) - 1
	for i > 0 && s[i-1] == '\r' {
		i--
	}
	return s[:i], s[i:]
}
