package validate

import (
	"strings"

	"github.com/nicolagi/hintful/internal/diagnostic"
	"github.com/nicolagi/hintful/internal/event"
)

// hunkState is kept per prefix, so the two representations of a compat
// diff are checked independently.
type hunkState struct {
	// Line of the partial line that ended a side, 0 while the side may
	// still receive content.
	ended event.Sides[int]
	// Last content line per side in the open hunk.
	last event.Sides[int]

	prev     *event.HunkHeader
	open     *event.HunkHeader
	accepted event.Sides[string]
}

type hunks map[string]*hunkState

// Hunks checks the declared line counts of each hunk, that no side receives
// content after a line without newline, and that the hunks of a file
// comparison are in order and do not overlap.
func Hunks(up event.Stream) event.Stream {
	return event.Fold(up, make(hunks), func(h hunks, ev event.Event) (hunks, []event.Event, error) {
		if err := h.check(ev); err != nil {
			return h, nil, err
		}
		return h, []event.Event{ev}, nil
	}, nil)
}

func (h hunks) state(prefix string) *hunkState {
	s, ok := h[prefix]
	if !ok {
		s = new(hunkState)
		h[prefix] = s
	}
	return s
}

func (h hunks) check(ev event.Event) error {
	s := h.state(event.PrefixOf(ev))
	switch e := ev.(type) {
	case event.FileHeader, event.Labels:
		// Without diff --git headers, labels begin the file comparison.
		*s = hunkState{}
	case event.HunkHeader:
		if s.prev != nil {
			if err := checkOrder(*s.prev, e); err != nil {
				return err
			}
		}
		s.open = &e
		s.accepted = event.Sides[string]{}
		s.last = event.Sides[int]{}
	case event.ContentLine:
		if s.open == nil {
			return internalf("hunks.check", "content line %d outside a hunk", e.Line)
		}
		for _, side := range event.BothSides {
			if !e.Kind.Has(side) || e.Masked[side] {
				continue
			}
			if s.ended[side] != 0 {
				return diagnostic.Invariantf(diagnostic.CodeContentAfterNoNewline, []int{s.ended[side], e.Line}, "%s content after a line without newline", side)
			}
			if strings.HasSuffix(s.accepted[side], "\r") && strings.Trim(e.Content, "\r") == "\n" {
				return diagnostic.Invariantf(diagnostic.CodeSplitTerminator, []int{s.last[side], e.Line}, "%s line terminator split across content lines", side)
			}
			s.accepted[side] += e.Content
			s.last[side] = e.Line
		}
	case event.EndHunk:
		if s.open == nil {
			return internalf("hunks.check", "end of hunk without a hunk")
		}
		for _, side := range event.BothSides {
			content := s.accepted[side]
			n := strings.Count(content, "\n")
			if content != "" && !strings.HasSuffix(content, "\n") {
				n++
				s.ended[side] = s.last[side]
			}
			if want := s.open.Key.Count[side]; n != want {
				return diagnostic.Invariantf(diagnostic.CodeLineCount, []int{s.open.Line}, "%s side has %d lines, the hunk header declares %d", side, n, want)
			}
		}
		s.prev, s.open = s.open, nil
	case event.Hunk, event.File:
		return internalf("hunks.check", "grouped %T at line %d", ev, event.LineOf(ev))
	}
	return nil
}

// position returns the line where a range begins. An empty range sits just
// after its start line.
func position(start, count int) int {
	if count == 0 {
		return start + 1
	}
	return start
}

func checkOrder(prev, cur event.HunkHeader) error {
	for _, side := range event.BothSides {
		end := position(prev.Key.Start[side], prev.Key.Count[side]) + prev.Key.Count[side]
		begin := position(cur.Key.Start[side], cur.Key.Count[side])
		if begin < end {
			return diagnostic.Invariantf(diagnostic.CodeHunkOrder, []int{prev.Line, cur.Line}, "%s range begins at line %d, before the previous hunk ends", side, begin)
		}
		// Two insertions at one place belong in one hunk.
		if prev.Key.Count[side] == 0 && cur.Key.Count[side] == 0 && begin == end {
			return diagnostic.Invariantf(diagnostic.CodeHunkOrder, []int{prev.Line, cur.Line}, "%s range is empty at line %d, like the previous hunk's", side, begin)
		}
	}
	return nil
}
