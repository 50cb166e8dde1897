// Package merge collapses hintful content into unified content.
//
// Hintful hunks distinguish ordinary common lines, low priority common
// lines, ignored lines and lines masked by snippets. Unified hunks only know
// left, right and common lines. The merger accumulates text per side and for
// both sides at once, and writes out whole lines as soon as they are
// complete, so that partial lines made of pieces of different kinds are
// joined back together.
package merge

import (
	"strings"

	"github.com/nicolagi/hintful/internal/event"
)

type state struct {
	left, right, both string
	ended             event.Sides[bool]
}

func (s *state) acc(k event.Kind) *string {
	switch k {
	case event.LeftContent:
		return &s.left
	case event.RightContent:
		return &s.right
	default:
		return &s.both
	}
}

var order = []event.Kind{event.LeftContent, event.RightContent, event.BothContent}

// complete removes the newline terminated lines from the accumulators.
func (s *state) complete() []event.Event {
	var out []event.Event
	for _, k := range order {
		acc := s.acc(k)
		for {
			i := strings.IndexByte(*acc, '\n')
			if i == -1 {
				break
			}
			out = append(out, event.ContentLine{Kind: k, Content: (*acc)[:i+1]})
			*acc = (*acc)[i+1:]
		}
	}
	return out
}

// rest empties the accumulators at the end of a hunk. A partial line ends
// its sides for the rest of the file comparison.
func (s *state) rest() []event.Event {
	var out []event.Event
	for _, k := range order {
		acc := s.acc(k)
		if *acc == "" {
			continue
		}
		out = append(out, event.ContentLine{Kind: k, Content: *acc})
		*acc = ""
		for _, side := range event.BothSides {
			if k.Has(side) {
				s.ended[side] = true
			}
		}
	}
	return out
}

func (s *state) check(line int) error {
	switch {
	case s.both != "" && (s.left != "" || s.right != ""):
		return internalf("state.check", "common and one-sided text pending at line %d", line)
	case s.ended[event.Left] && (s.left != "" || s.both != ""):
		return internalf("state.check", "left side receives content after its last line, at line %d", line)
	case s.ended[event.Right] && (s.right != "" || s.both != ""):
		return internalf("state.check", "right side receives content after its last line, at line %d", line)
	}
	return nil
}

func (s *state) add(e event.ContentLine) {
	var sides []event.Side
	for _, side := range event.BothSides {
		if e.Kind.Has(side) && !e.Masked[side] {
			sides = append(sides, side)
		}
	}
	switch len(sides) {
	case 1:
		if s.both != "" {
			s.left, s.right, s.both = s.both, s.both, ""
		}
		*s.acc(event.KindOf(sides[0])) += e.Content
	case 2:
		if s.left == "" && s.right == "" {
			s.both += e.Content
		} else {
			s.left += e.Content
			s.right += e.Content
		}
	}
}

// Unprefixed converts the unprefixed hunks of the stream to the unified
// grammar, and their file comparisons to the unified dialect. Prefixed
// events pass through.
func Unprefixed(up event.Stream) event.Stream {
	return event.Fold(up, &state{}, step, flush)
}

func step(s *state, ev event.Event) (*state, []event.Event, error) {
	if event.PrefixOf(ev) != "" {
		return s, []event.Event{ev}, nil
	}
	if err := s.check(event.LineOf(ev)); err != nil {
		return s, nil, err
	}
	out := s.complete()
	if err := s.check(event.LineOf(ev)); err != nil {
		return s, out, err
	}
	switch e := ev.(type) {
	case event.FileHeader:
		e.Dialect = event.Unified
		return s, append(out, e), nil
	case event.HunkHeader:
		e.Grammar = event.GrammarUnified
		e.Columns = 0
		e.DeclaredLines = 0
		e.DeclaredRaw = ""
		e.NewlineMarkers = false
		return s, append(out, e), nil
	case event.ContentLine:
		s.add(e)
		return s, out, nil
	case event.SnippetActivate, event.SnippetDeactivate, event.SnippetOpen, event.SnippetEnd:
		return s, out, nil
	case event.EndHunk:
		out = append(out, s.rest()...)
		return s, append(out, e), nil
	case event.EndFile:
		s.ended = event.Sides[bool]{}
		return s, append(out, e), nil
	case event.IndexLine, event.Labels, event.Rename, event.SimilarityIndex, event.FileModeChange:
		return s, append(out, ev), nil
	default:
		return s, out, internalf("step", "unhandled event %T at line %d", ev, event.LineOf(ev))
	}
}

func flush(s *state) ([]event.Event, error) {
	if s.left != "" || s.right != "" || s.both != "" {
		return nil, internalf("flush", "content pending after the last hunk")
	}
	return nil, nil
}
