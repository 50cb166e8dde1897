// Package format writes event streams back out as diff text.
//
// Each header event keeps the raw text the parser saw, so formatting
// parsed input reproduces it byte for byte. The hunk grammar (unified,
// hintful or legacy) is taken from the most recent hunk header.
package format

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/nicolagi/hintful/internal/event"
	"github.com/pkg/errors"
)

// DefaultNoNewlineMarker is written after partial lines that carry no marker of their own.
const DefaultNoNewlineMarker = "\\ No newline at end of file\n"

type formatter struct {
	w    *bufio.Writer
	hunk *event.HunkHeader
}

// Write formats all events of s to w. On error, the text formatted so far
// is still written out.
func Write(w io.Writer, s event.Stream) error {
	f := &formatter{w: bufio.NewWriter(w)}
	for {
		ev, err := s.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err == nil {
			err = f.event(ev)
		}
		if err != nil {
			_ = f.w.Flush()
			return err
		}
	}
	return errors.WithStack(f.w.Flush())
}

func (f *formatter) line(prefix, text, eol string) {
	if eol == "" {
		eol = "\n"
	}
	_, _ = f.w.WriteString(prefix)
	_, _ = f.w.WriteString(text)
	_, _ = f.w.WriteString(eol)
}

func (f *formatter) event(ev event.Event) error {
	switch e := ev.(type) {
	case event.FileHeader:
		f.line(e.Prefix, "diff --"+e.Dialect.Keyword()+" "+e.Paths[event.Left]+" "+e.Paths[event.Right], e.EOL)
	case event.IndexLine:
		f.line(e.Prefix, "index "+e.OIDs[event.Left]+".."+e.OIDs[event.Right]+e.Mode, e.EOL)
	case event.Labels:
		f.line(e.Prefix, "--- "+e.Labels[event.Left], e.EOL[event.Left])
		f.line(e.Prefix, "+++ "+e.Labels[event.Right], e.EOL[event.Right])
	case event.Rename:
		f.line(e.Prefix, "rename from "+e.Paths[event.Left], e.EOL[event.Left])
		f.line(e.Prefix, "rename to "+e.Paths[event.Right], e.EOL[event.Right])
	case event.SimilarityIndex:
		f.line(e.Prefix, "similarity index "+e.Percent+"%", e.EOL)
	case event.FileModeChange:
		op := "new"
		if e.Side == event.Left {
			op = "deleted"
		}
		f.line(e.Prefix, op+" file mode "+e.Mode, e.EOL)
	case event.HunkHeader:
		f.hunkHeader(e)
		f.hunk = &e
	case event.ContentLine:
		return f.content(e)
	case event.SnippetActivate:
		f.line(e.Prefix, columns(e.Columns, '^')+":"+e.Name, e.EOL)
	case event.SnippetDeactivate:
		f.line(e.Prefix, columns(e.Columns, '$')+":", e.EOL)
	case event.SnippetOpen:
		c := "<"
		if e.Side == event.Right {
			c = ">"
		}
		f.line(e.Prefix, c+e.Name, e.EOL)
	case event.SnippetEnd, event.EndFile:
	case event.EndHunk:
		f.hunk = nil
	case event.Hunk:
		if err := f.event(e.Header); err != nil {
			return err
		}
		for _, child := range e.Contents {
			if err := f.event(child); err != nil {
				return err
			}
		}
		return f.event(e.End)
	case event.File:
		if err := f.event(e.Header); err != nil {
			return err
		}
		for _, child := range e.Children {
			if err := f.event(child); err != nil {
				return err
			}
		}
		return f.event(e.End)
	default:
		return internalf("formatter.event", "unhandled event %T", ev)
	}
	return nil
}

func columns(marked []bool, mark byte) string {
	b := make([]byte, len(marked))
	for i, m := range marked {
		b[i] = ','
		if m {
			b[i] = mark
		}
	}
	return string(b)
}

// number returns raw if it still denotes n, so that leading zeros survive.
func number(raw string, n int) string {
	if v, err := strconv.Atoi(raw); err == nil && v == n {
		return raw
	}
	return strconv.Itoa(n)
}

// count is like number for the optional ",count" part of a range.
func count(raw string, n int) string {
	if raw == "" && n == 1 {
		return ""
	}
	if v, err := strconv.Atoi(strings.TrimPrefix(raw, ",")); err == nil && v == n && raw != "" {
		return raw
	}
	return "," + strconv.Itoa(n)
}

func (f *formatter) hunkHeader(h event.HunkHeader) {
	var b strings.Builder
	b.WriteString("@@ -")
	b.WriteString(number(h.StartRaw[event.Left], h.Key.Start[event.Left]))
	b.WriteString(count(h.CountRaw[event.Left], h.Key.Count[event.Left]))
	switch h.Grammar {
	case event.GrammarHintful:
		b.WriteByte(' ')
		b.WriteString(strings.Repeat("^", h.Columns))
		b.WriteString(number(h.DeclaredRaw, h.DeclaredLines))
		if h.NewlineMarkers {
			b.WriteByte('\\')
		}
	case event.GrammarLegacy:
		b.WriteString(" (")
		b.WriteString(number(h.DeclaredRaw, h.DeclaredLines))
		b.WriteByte(')')
	}
	b.WriteString(" +")
	b.WriteString(number(h.StartRaw[event.Right], h.Key.Start[event.Right]))
	b.WriteString(count(h.CountRaw[event.Right], h.Key.Count[event.Right]))
	b.WriteString(" @@")
	b.WriteString(h.Comment)
	f.line(h.Prefix, b.String(), h.EOL)
}

// splitEOL splits content ending in a newline into its text and its \r*\n terminator.
func splitEOL(s string) (text, eol string) {
	i := len(s) - 1
	for i > 0 && s[i-1] == '\r' {
		i--
	}
	return s[:i], s[i:]
}

func (f *formatter) content(e event.ContentLine) error {
	if f.hunk == nil {
		return internalf("formatter.content", "content line at line %d outside a hunk", e.Line)
	}
	newline := strings.HasSuffix(e.Content, "\n")
	marker := e.Marker
	if marker == "" {
		marker = DefaultNoNewlineMarker
	}
	var payload byte
	if f.hunk.Grammar == event.GrammarUnified {
		switch e.Kind {
		case event.LeftContent:
			payload = '-'
		case event.RightContent:
			payload = '+'
		case event.BothContent, event.LowPriorityContent:
			payload = ' '
		default:
			return internalf("formatter.content", "%v content at line %d in a unified hunk", e.Kind, e.Line)
		}
		_, _ = f.w.WriteString(e.Prefix)
		_ = f.w.WriteByte(payload)
		_, _ = f.w.WriteString(e.Content)
		if !newline {
			f.line("", "", "\n")
			f.line(e.Prefix, "", marker)
		}
		return nil
	}
	switch e.Kind {
	case event.LeftContent:
		payload = '-'
	case event.RightContent:
		payload = '+'
	case event.BothContent:
		payload = ' '
	case event.LowPriorityContent:
		payload = '_'
	case event.IgnoredContent:
		payload = '#'
	default:
		return internalf("formatter.content", "unhandled kind %v at line %d", e.Kind, e.Line)
	}
	_, _ = f.w.WriteString(e.Prefix)
	if f.hunk.Grammar == event.GrammarHintful {
		for c := 0; c < f.hunk.Columns; c++ {
			if c < len(e.Membership) && e.Membership[c] {
				_ = f.w.WriteByte('=')
			} else {
				_ = f.w.WriteByte('.')
			}
		}
	}
	_ = f.w.WriteByte(payload)
	switch {
	case !f.hunk.NewlineMarkers:
		_, _ = f.w.WriteString(e.Content)
		if !newline {
			f.line("", "", "\n")
			f.line(e.Prefix, "", marker)
		}
	case newline:
		text, eol := splitEOL(e.Content)
		f.line("", text+"$", eol)
	default:
		f.line("", e.Content+"\\", e.EOL)
	}
	return nil
}
