// Package group folds the events of a hunk or of a file comparison into a
// single aggregate event, and flattens aggregates back.
package group

import (
	"github.com/nicolagi/hintful/internal/diagnostic"
	"github.com/nicolagi/hintful/internal/event"
)

// Hunks replaces each HunkHeader, content..., EndHunk run with an event.Hunk.
// Other events pass through.
func Hunks(up event.Stream) event.Stream {
	return event.Fold(up, (*event.Hunk)(nil), stepHunk, flushHunk)
}

func stepHunk(h *event.Hunk, ev event.Event) (*event.Hunk, []event.Event, error) {
	if h == nil {
		if header, ok := ev.(event.HunkHeader); ok {
			return &event.Hunk{Meta: header.Meta, Header: header}, nil, nil
		}
		return nil, []event.Event{ev}, nil
	}
	if err := samePrefix(h.Header.Meta, ev, "hunk"); err != nil {
		return nil, nil, err
	}
	switch e := ev.(type) {
	case event.ContentLine, event.SnippetActivate, event.SnippetDeactivate, event.SnippetOpen, event.SnippetEnd:
		h.Contents = append(h.Contents, ev)
		return h, nil, nil
	case event.EndHunk:
		h.End = e
		return nil, []event.Event{*h}, nil
	default:
		return nil, nil, internalf("stepHunk", "unexpected %T inside the hunk at line %d", ev, h.Header.Line)
	}
}

func flushHunk(h *event.Hunk) ([]event.Event, error) {
	if h != nil {
		return nil, diagnostic.Invariantf(diagnostic.CodeUnexpectedEOF, []int{h.Header.Line}, "unexpected end of input inside hunk")
	}
	return nil, nil
}

// Files replaces each FileHeader...EndFile run with an event.File. Other
// events pass through.
func Files(up event.Stream) event.Stream {
	return event.Fold(up, (*event.File)(nil), stepFile, flushFile)
}

func stepFile(f *event.File, ev event.Event) (*event.File, []event.Event, error) {
	if f == nil {
		if header, ok := ev.(event.FileHeader); ok {
			return &event.File{Meta: header.Meta, Header: header}, nil, nil
		}
		return nil, []event.Event{ev}, nil
	}
	if err := samePrefix(f.Header.Meta, ev, "file comparison"); err != nil {
		return nil, nil, err
	}
	switch e := ev.(type) {
	case event.EndFile:
		f.End = e
		return nil, []event.Event{*f}, nil
	case event.FileHeader, event.File:
		return nil, nil, internalf("stepFile", "unexpected %T inside the file comparison at line %d", ev, f.Header.Line)
	default:
		f.Children = append(f.Children, ev)
		return f, nil, nil
	}
}

func flushFile(f *event.File) ([]event.Event, error) {
	if f != nil {
		return nil, diagnostic.Invariantf(diagnostic.CodeUnexpectedEOF, []int{f.Header.Line}, "unexpected end of input inside file comparison")
	}
	return nil, nil
}

func samePrefix(open event.Meta, ev event.Event, what string) error {
	if p := event.PrefixOf(ev); p != open.Prefix {
		return diagnostic.Invariantf(diagnostic.CodeGroupPrefix, []int{open.Line, event.LineOf(ev)}, "prefix %q inside %s with prefix %q", p, what, open.Prefix)
	}
	return nil
}

// UngroupHunks flattens event.Hunk aggregates. It is the inverse of Hunks.
func UngroupHunks(up event.Stream) event.Stream {
	return event.Fold(up, struct{}{}, func(s struct{}, ev event.Event) (struct{}, []event.Event, error) {
		h, ok := ev.(event.Hunk)
		if !ok {
			return s, []event.Event{ev}, nil
		}
		out := make([]event.Event, 0, len(h.Contents)+2)
		out = append(out, h.Header)
		out = append(out, h.Contents...)
		return s, append(out, h.End), nil
	}, nil)
}

// UngroupFiles flattens event.File aggregates, leaving any event.Hunk among
// their children grouped. It is the inverse of Files.
func UngroupFiles(up event.Stream) event.Stream {
	return event.Fold(up, struct{}{}, func(s struct{}, ev event.Event) (struct{}, []event.Event, error) {
		f, ok := ev.(event.File)
		if !ok {
			return s, []event.Event{ev}, nil
		}
		out := make([]event.Event, 0, len(f.Children)+2)
		out = append(out, f.Header)
		out = append(out, f.Children...)
		return s, append(out, f.End), nil
	}, nil)
}
