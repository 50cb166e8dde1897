// Package convert rewrites unified hunks: promoting them to the hintful
// grammar, or putting their one-sided lines in canonical order.
package convert

import (
	"strconv"

	"github.com/nicolagi/hintful/internal/event"
)

// ToHintful promotes grouped unified hunks to the hintful grammar, with
// newline markers and no snippet columns, and marks file comparisons as
// hintful. The declared line count is recounted from the hunk contents.
func ToHintful(up event.Stream) event.Stream {
	return event.Map(up, toHintful)
}

func toHintful(ev event.Event) (event.Event, error) {
	switch e := ev.(type) {
	case event.FileHeader:
		e.Dialect = event.Hintful
		return e, nil
	case event.HunkHeader:
		if e.Grammar == event.GrammarUnified {
			return nil, internalf("toHintful", "unified hunk at line %d is not grouped", e.Line)
		}
		return e, nil
	case event.Hunk:
		if e.Header.Grammar != event.GrammarUnified {
			return e, nil
		}
		contents := make([]event.Event, len(e.Contents))
		for i, child := range e.Contents {
			line, ok := child.(event.ContentLine)
			if !ok {
				return nil, internalf("toHintful", "unexpected %T in unified hunk at line %d", child, e.Header.Line)
			}
			line.Marker = ""
			line.EOL = ""
			contents[i] = line
		}
		e.Contents = contents
		e.Header.Grammar = event.GrammarHintful
		e.Header.Columns = 0
		e.Header.NewlineMarkers = true
		e.Header.DeclaredLines = len(contents)
		e.Header.DeclaredRaw = strconv.Itoa(len(contents))
		return e, nil
	case event.File:
		children := make([]event.Event, len(e.Children))
		for i, child := range e.Children {
			var err error
			if children[i], err = toHintful(child); err != nil {
				return nil, err
			}
		}
		e.Header.Dialect = event.Hintful
		e.Children = children
		return e, nil
	default:
		return ev, nil
	}
}

type order struct {
	unified bool
	// One-sided lines of the current run, by side.
	run event.Sides[[]event.Event]
}

func (o order) flush(next ...event.Event) []event.Event {
	out := make([]event.Event, 0, len(o.run[event.Left])+len(o.run[event.Right])+len(next))
	out = append(out, o.run[event.Left]...)
	out = append(out, o.run[event.Right]...)
	return append(out, next...)
}

func oneSided(ev event.Event) (event.Side, bool) {
	line, ok := ev.(event.ContentLine)
	switch {
	case !ok:
		return 0, false
	case line.Kind == event.LeftContent:
		return event.Left, true
	case line.Kind == event.RightContent:
		return event.Right, true
	default:
		return 0, false
	}
}

func stepOrder(o order, ev event.Event) (order, []event.Event, error) {
	switch e := ev.(type) {
	case event.HunkHeader:
		out := o.flush(ev)
		return order{unified: e.Grammar == event.GrammarUnified}, out, nil
	case event.Hunk:
		if e.Header.Grammar == event.GrammarUnified {
			e.Contents = reorder(e.Contents)
		}
		return order{}, o.flush(e), nil
	}
	if side, ok := oneSided(ev); ok && o.unified {
		o.run[side] = append(o.run[side], ev)
		return o, nil, nil
	}
	return order{unified: o.unified}, o.flush(ev), nil
}

func flushOrder(o order) ([]event.Event, error) {
	return o.flush(), nil
}

func reorder(events []event.Event) []event.Event {
	o := order{unified: true}
	var out []event.Event
	for _, ev := range events {
		var emitted []event.Event
		o, emitted, _ = stepOrder(o, ev)
		out = append(out, emitted...)
	}
	return append(out, o.flush()...)
}

// CanonicalOrder writes each run of one-sided lines of a unified hunk as its
// left lines followed by its right lines. Each side's content is unchanged.
func CanonicalOrder(up event.Stream) event.Stream {
	return event.Fold(up, order{}, stepOrder, flushOrder)
}
