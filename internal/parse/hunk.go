package parse

import (
	"strings"

	"github.com/nicolagi/hintful/internal/diagnostic"
	"github.com/nicolagi/hintful/internal/event"
)

type snippet struct {
	name    string
	line    int
	content string
}

type hunkState struct {
	header event.HunkHeader

	// Unified grammar: lines still expected on each side.
	remaining event.Sides[int]

	// Hintful grammars: lines still expected in total.
	lines int

	// Active snippet per column (per side in the legacy grammar), nil if none.
	snippets []*snippet

	content event.Sides[string]
}

func newHunkState(h event.HunkHeader) *hunkState {
	s := &hunkState{header: h}
	switch h.Grammar {
	case event.GrammarUnified:
		s.remaining = h.Key.Count
	case event.GrammarHintful:
		s.lines = h.DeclaredLines
		s.snippets = make([]*snippet, h.Columns)
	case event.GrammarLegacy:
		s.lines = h.DeclaredLines
		s.snippets = make([]*snippet, 2)
	}
	return s
}

func (s *hunkState) complete() bool {
	if s.header.Grammar == event.GrammarUnified {
		return s.remaining[event.Left] <= 0 && s.remaining[event.Right] <= 0
	}
	return s.lines <= 0
}

func (s *hunkState) missing() int {
	if s.header.Grammar == event.GrammarUnified {
		return s.remaining[event.Left] + s.remaining[event.Right]
	}
	return s.lines
}

// accumulate adds content to the sides it counts on.
func (s *hunkState) accumulate(ev event.ContentLine) {
	for _, side := range event.BothSides {
		if ev.Kind.Has(side) && !ev.Masked[side] {
			s.content[side] += ev.Content
		}
	}
}

func payloadKind(c byte) (event.Kind, bool) {
	switch c {
	case '-':
		return event.LeftContent, true
	case '+':
		return event.RightContent, true
	case ' ':
		return event.BothContent, true
	case '_':
		return event.LowPriorityContent, true
	case '#':
		return event.IgnoredContent, true
	default:
		return 0, false
	}
}

func (p *parser) hunkLine(l line) error {
	h := p.hunk
	if h.header.Grammar == event.GrammarUnified && (l.prefix != h.header.Prefix || !looksLikeContent(event.Unified, l.body)) {
		// Declared counts are checked by the validator, not here.
		if err := p.endHunk(); err != nil {
			return err
		}
		return p.line(l)
	}
	if l.prefix != h.header.Prefix {
		return diagnostic.Grammarf(diagnostic.CodePrefixMismatch, l.num, l.raw(), "prefix differs from that of the hunk header at line %d", h.header.Line)
	}
	var err error
	switch h.header.Grammar {
	case event.GrammarUnified:
		err = p.unifiedLine(l)
	case event.GrammarHintful:
		h.lines--
		err = p.hintfulLine(l)
	case event.GrammarLegacy:
		h.lines--
		err = p.legacyLine(l)
	default:
		err = internalf("parser.hunkLine", "unhandled grammar %v", h.header.Grammar)
	}
	if err != nil {
		return err
	}
	if h.complete() {
		return p.endHunk()
	}
	return nil
}

func (p *parser) endHunk() error {
	h := p.hunk
	for _, sn := range h.snippets {
		if sn != nil {
			return diagnostic.Invariantf(diagnostic.CodeSnippetUnclosed, []int{sn.line}, "hunk at line %d ends inside snippet %q", h.header.Line, sn.name)
		}
	}
	p.emit(event.EndHunk{
		Meta:    h.header.Meta,
		Key:     h.header.Key,
		Content: h.content,
	})
	p.hunk = nil
	return nil
}

func (p *parser) unifiedLine(l line) error {
	h := p.hunk
	kind, _ := payloadKind(l.body[0])
	ev := event.ContentLine{
		Meta:    p.meta(l),
		Kind:    kind,
		Content: l.body[1:],
		Marker:  l.marker,
	}
	if l.marker != "" {
		ev.Content = strings.TrimSuffix(ev.Content, "\n")
	}
	for _, side := range event.BothSides {
		if kind.Has(side) {
			h.remaining[side]--
		}
	}
	h.accumulate(ev)
	p.emit(ev)
	return nil
}

// markedContent parses the text of a content line ending in a $ or \ newline marker.
func markedContent(l line, rest string) (content, eol string, err error) {
	text, eol := splitEOL(rest)
	if text == "" {
		return "", "", diagnostic.Grammarf(diagnostic.CodeHunkLine, l.num, l.raw(), "content line lacks a $ or \\ newline marker")
	}
	marker := text[len(text)-1]
	text = text[:len(text)-1]
	switch marker {
	case '$':
		if strings.HasSuffix(text, "\r") {
			return "", "", diagnostic.Grammarf(diagnostic.CodeCarriageReturn, l.num, l.raw(), "carriage return before $ newline marker")
		}
		return text + eol, "", nil
	case '\\':
		return text, eol, nil
	default:
		return "", "", diagnostic.Grammarf(diagnostic.CodeHunkLine, l.num, l.raw(), "content line lacks a $ or \\ newline marker")
	}
}

// contentLine parses payload indicator and text, shared by the hintful grammars.
func (p *parser) contentLine(l line, rest string, markers bool) (event.ContentLine, error) {
	kind, ok := payloadKind(rest[0])
	if !ok {
		return event.ContentLine{}, diagnostic.Grammarf(diagnostic.CodeHunkLine, l.num, l.raw(), "unexpected line in hunk, %d lines short", p.hunk.lines+1)
	}
	ev := event.ContentLine{
		Meta: p.meta(l),
		Kind: kind,
	}
	if !markers {
		ev.Content = rest[1:]
		if l.marker != "" {
			ev.Content = strings.TrimSuffix(ev.Content, "\n")
			ev.Marker = l.marker
		}
		return ev, nil
	}
	if l.marker != "" {
		return event.ContentLine{}, diagnostic.Grammarf(diagnostic.CodeForbiddenNewlineMarker, l.markerNum, l.prefix+l.marker, "no newline marker line in a hunk using newline markers")
	}
	var err error
	ev.Content, ev.EOL, err = markedContent(l, rest[1:])
	return ev, err
}

func (p *parser) hintfulLine(l line) error {
	h := p.hunk
	n := h.header.Columns
	if len(l.body) <= n+1 {
		return diagnostic.Grammarf(diagnostic.CodeHunkLine, l.num, l.raw(), "line too short for %d snippet columns", n)
	}
	columns, rest := l.body[:n], l.body[n:]
	if rest[0] == ':' && strings.Trim(columns, "^,$") == "" {
		return p.snippetLine(l, columns, rest[1:])
	}
	if strings.Trim(columns, ".=") != "" {
		return diagnostic.Grammarf(diagnostic.CodeHunkLine, l.num, l.raw(), "unexpected line in hunk, %d lines short", h.lines+1)
	}
	ev, err := p.contentLine(l, rest, h.header.NewlineMarkers)
	if err != nil {
		return err
	}
	if n > 0 {
		ev.Membership = make([]bool, n)
	}
	for c := 0; c < n; c++ {
		if columns[c] != '=' {
			continue
		}
		if h.snippets[c] == nil {
			return diagnostic.Grammarf(diagnostic.CodeSnippetColumn, l.num, l.raw(), "content marked as part of inactive snippet column %d", c)
		}
		ev.Membership[c] = true
		side := event.ColumnSide(c)
		ev.Masked[side] = true
		if ev.Kind.Has(side) {
			h.snippets[c].content += ev.Content
		}
	}
	h.accumulate(ev)
	p.emit(ev)
	return nil
}

func (p *parser) snippetLine(l line, columns, rest string) error {
	h := p.hunk
	if l.marker != "" {
		return diagnostic.Grammarf(diagnostic.CodeOrphanNewlineMarker, l.markerNum, l.prefix+l.marker, "no newline marker after a snippet line")
	}
	name, eol := splitEOL(rest)
	activate := strings.Contains(columns, "^")
	deactivate := strings.Contains(columns, "$")
	switch {
	case activate && deactivate:
		return diagnostic.Grammarf(diagnostic.CodeSnippetColumn, l.num, l.raw(), "snippet line both activates and deactivates columns")
	case !activate && !deactivate:
		return diagnostic.Grammarf(diagnostic.CodeSnippetColumn, l.num, l.raw(), "snippet line marks no column")
	case activate && name == "":
		return diagnostic.Grammarf(diagnostic.CodeSnippetColumn, l.num, l.raw(), "snippet activation without a name")
	case deactivate && name != "":
		return diagnostic.Grammarf(diagnostic.CodeSnippetColumn, l.num, l.raw(), "snippet deactivation with a name")
	}
	marked := make([]bool, len(columns))
	for c := range columns {
		marked[c] = columns[c] != ','
	}
	if activate {
		p.emit(event.SnippetActivate{
			Meta:    p.meta(l),
			Name:    name,
			Columns: marked,
			EOL:     eol,
		})
	} else {
		for c, m := range marked {
			if m && h.snippets[c] == nil {
				return diagnostic.Grammarf(diagnostic.CodeSnippetColumn, l.num, l.raw(), "deactivating column %d, which has no active snippet", c)
			}
		}
		p.emit(event.SnippetDeactivate{
			Meta:    p.meta(l),
			Columns: marked,
			EOL:     eol,
		})
	}
	for c, m := range marked {
		if !m {
			continue
		}
		p.endSnippet(l, c)
		if activate {
			h.snippets[c] = &snippet{name: name, line: l.num}
		}
	}
	return nil
}

// endSnippet emits SnippetEnd for the snippet active on column c, if any.
func (p *parser) endSnippet(l line, c int) {
	sn := p.hunk.snippets[c]
	if sn == nil {
		return
	}
	p.emit(event.SnippetEnd{
		Meta:      p.meta(l),
		Name:      sn.name,
		Column:    c,
		Content:   sn.content,
		StartLine: sn.line,
	})
	p.hunk.snippets[c] = nil
}

func (p *parser) legacyLine(l line) error {
	h := p.hunk
	if c := l.body[0]; c == '<' || c == '>' {
		if l.marker != "" {
			return diagnostic.Grammarf(diagnostic.CodeOrphanNewlineMarker, l.markerNum, l.prefix+l.marker, "no newline marker after a snippet line")
		}
		side := event.Left
		if c == '>' {
			side = event.Right
		}
		name, eol := splitEOL(l.body[1:])
		p.emit(event.SnippetOpen{
			Meta: p.meta(l),
			Side: side,
			Name: name,
			EOL:  eol,
		})
		p.endSnippet(l, int(side))
		if name != "" {
			h.snippets[side] = &snippet{name: name, line: l.num}
		}
		return nil
	}
	ev, err := p.contentLine(l, l.body, true)
	if err != nil {
		return err
	}
	for _, side := range event.BothSides {
		sn := h.snippets[side]
		if sn == nil {
			continue
		}
		ev.Masked[side] = true
		if ev.Kind.Has(side) {
			sn.content += ev.Content
		}
	}
	h.accumulate(ev)
	p.emit(ev)
	return nil
}
