// Package compat relates the two representations of a compat diff: the
// hintful one, with lines prefixed by "|", and the unified one.
package compat

import (
	"github.com/nicolagi/hintful/internal/event"
	"github.com/nicolagi/hintful/internal/parse"
)

type prefixed struct {
	files map[event.Sides[string]]event.File
	hunks map[event.HunkKey]event.Hunk
}

// ApplyPrefixedFiles keeps the unprefixed representation, with each of its
// hunks replaced by the prefixed hunk of the same key, if any. It expects
// grouped hunks and files. Prefixed events are consumed; the output has no
// prefixes.
func ApplyPrefixedFiles(up event.Stream) event.Stream {
	init := &prefixed{
		files: make(map[event.Sides[string]]event.File),
		hunks: make(map[event.HunkKey]event.Hunk),
	}
	return event.Fold(up, init, applyStep, nil)
}

func applyStep(p *prefixed, ev event.Event) (*prefixed, []event.Event, error) {
	if event.PrefixOf(ev) == parse.CompatPrefix {
		switch e := ev.(type) {
		case event.File:
			p.files[e.Header.Paths] = e
		case event.Hunk:
			p.hunks[e.Header.Key] = e
		case event.HunkHeader, event.FileHeader:
			return p, nil, internalf("applyStep", "%T at line %d is not grouped", e, event.LineOf(ev))
		}
		return p, nil, nil
	}
	switch e := ev.(type) {
	case event.File:
		hintful, ok := p.files[e.Header.Paths]
		if !ok {
			return p, []event.Event{e}, nil
		}
		delete(p.files, e.Header.Paths)
		hunks := make(map[event.HunkKey]event.Hunk)
		for _, child := range hintful.Children {
			if h, ok := child.(event.Hunk); ok {
				hunks[h.Header.Key] = h
			}
		}
		children := make([]event.Event, len(e.Children))
		for i, child := range e.Children {
			children[i] = child
			if h, ok := child.(event.Hunk); ok {
				if replacement, ok := hunks[h.Header.Key]; ok {
					children[i] = event.Reprefix(replacement, "")
				}
			}
		}
		e.Children = children
		return p, []event.Event{e}, nil
	case event.Hunk:
		hintful, ok := p.hunks[e.Header.Key]
		if !ok {
			return p, []event.Event{e}, nil
		}
		delete(p.hunks, e.Header.Key)
		return p, []event.Event{event.Reprefix(hintful, "")}, nil
	default:
		return p, []event.Event{ev}, nil
	}
}

// Duplicate writes each top level event twice: first with the "|" prefix,
// then without. The unprefixed copies still need converting to the unified
// grammar.
func Duplicate(up event.Stream) event.Stream {
	return event.Fold(up, struct{}{}, func(s struct{}, ev event.Event) (struct{}, []event.Event, error) {
		if p := event.PrefixOf(ev); p != "" {
			return s, nil, internalf("Duplicate", "event %T at line %d already has prefix %q", ev, event.LineOf(ev), p)
		}
		return s, []event.Event{event.Reprefix(ev, parse.CompatPrefix), ev}, nil
	}, nil)
}
