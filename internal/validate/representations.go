package validate

import (
	"sort"

	"github.com/nicolagi/hintful/internal/diagnostic"
	"github.com/nicolagi/hintful/internal/event"
	"github.com/nicolagi/hintful/internal/parse"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// fact is the text of an extended header line, for comparison between the
// two representations of a file comparison.
type fact struct {
	text string
	line int
}

// record tracks the occurrences of one file comparison or hunk.
type record struct {
	what string
	// Lines of the prefixed and unprefixed occurrences, 0 if not seen.
	prefixed, unprefixed int

	facts   map[string]fact
	content event.Sides[string]
}

type representations struct {
	files   map[event.Sides[string]]*record
	hunks   map[event.HunkKey]*record
	records []*record

	// The open file comparison, and the facts of its unprefixed occurrence
	// while they still need comparing.
	file    *record
	pending map[string]fact
	hunk    *record
	dmp     *diffmatchpatch.DiffMatchPatch
}

// Representations checks that the prefixed (hintful) and unprefixed
// (unified) representations of a compat diff describe the same patch: each
// prefixed file comparison and hunk is followed by an unprefixed one with the
// same key, the same extended headers and the same content.
func Representations(up event.Stream) event.Stream {
	init := &representations{
		files: make(map[event.Sides[string]]*record),
		hunks: make(map[event.HunkKey]*record),
		dmp:   diffmatchpatch.New(),
	}
	return event.Fold(up, init, func(r *representations, ev event.Event) (*representations, []event.Event, error) {
		if err := r.check(ev); err != nil {
			return r, nil, err
		}
		return r, []event.Event{ev}, nil
	}, func(r *representations) ([]event.Event, error) {
		return nil, r.dangling()
	})
}

// occurrence registers an occurrence of a file comparison or hunk, and
// returns its record.
func (r *representations) occurrence(rec *record, what, prefix string, line int) (*record, error) {
	if rec == nil {
		rec = &record{what: what, facts: make(map[string]fact)}
		r.records = append(r.records, rec)
	}
	switch {
	case prefix == parse.CompatPrefix && rec.prefixed == 0 && rec.unprefixed == 0:
		rec.prefixed = line
	case prefix == parse.CompatPrefix:
		return nil, diagnostic.Invariantf(diagnostic.CodeCompatOrder, []int{first(rec), line}, "prefixed %s after an earlier occurrence", what)
	case rec.unprefixed == 0:
		rec.unprefixed = line
	default:
		return nil, diagnostic.Invariantf(diagnostic.CodeCompatOrder, []int{rec.unprefixed, line}, "third occurrence of %s", what)
	}
	return rec, nil
}

func first(rec *record) int {
	if rec.prefixed != 0 {
		return rec.prefixed
	}
	return rec.unprefixed
}

func (r *representations) addFact(prefix, name, text string, line int) {
	if r.file == nil {
		return
	}
	f := fact{text: text, line: line}
	if prefix == parse.CompatPrefix {
		r.file.facts[name] = f
	} else if r.pending != nil {
		r.pending[name] = f
	}
}

func (r *representations) check(ev event.Event) error {
	prefix := event.PrefixOf(ev)
	switch e := ev.(type) {
	case event.FileHeader:
		rec, err := r.occurrence(r.files[e.Paths], "file comparison", prefix, e.Line)
		if err != nil {
			return err
		}
		r.files[e.Paths] = rec
		r.file = rec
		r.pending = nil
		if prefix != parse.CompatPrefix && rec.prefixed != 0 {
			r.pending = make(map[string]fact)
		}
	case event.IndexLine:
		r.addFact(prefix, "index", e.OIDs[event.Left]+".."+e.OIDs[event.Right]+e.Mode, e.Line)
	case event.Labels:
		r.addFact(prefix, "labels", e.Labels[event.Left]+"\x00"+e.Labels[event.Right], e.Line)
	case event.Rename:
		r.addFact(prefix, "rename", e.Paths[event.Left]+"\x00"+e.Paths[event.Right], e.Line)
	case event.SimilarityIndex:
		r.addFact(prefix, "similarity index", e.Percent, e.Line)
	case event.FileModeChange:
		r.addFact(prefix, e.Side.String()+" file mode", e.Mode, e.Line)
	case event.HunkHeader:
		if err := r.compareFacts(); err != nil {
			return err
		}
		rec, err := r.occurrence(r.hunks[e.Key], "hunk", prefix, e.Line)
		if err != nil {
			return err
		}
		r.hunks[e.Key] = rec
		r.hunk = rec
	case event.EndHunk:
		if r.hunk == nil {
			return internalf("representations.check", "end of hunk without a hunk")
		}
		rec := r.hunk
		r.hunk = nil
		if prefix == parse.CompatPrefix {
			rec.content = e.Content
			return nil
		}
		if rec.prefixed == 0 {
			return nil
		}
		for _, side := range event.BothSides {
			want, got := rec.content[side], e.Content[side]
			if want != got {
				at := r.dmp.DiffCommonPrefix(want, got)
				return diagnostic.Invariantf(diagnostic.CodeCompatContentMismatch, []int{rec.prefixed, rec.unprefixed}, "%s content differs between representations from character %d", side, at)
			}
		}
	case event.EndFile:
		if err := r.compareFacts(); err != nil {
			return err
		}
		r.file = nil
	case event.Hunk, event.File:
		return internalf("representations.check", "grouped %T at line %d", ev, event.LineOf(ev))
	}
	return nil
}

// compareFacts compares the extended headers of the open file comparison's
// two occurrences, once the unprefixed one has all of its own.
func (r *representations) compareFacts() error {
	if r.pending == nil {
		return nil
	}
	want, got := r.file.facts, r.pending
	r.pending = nil
	names := make(map[string]bool)
	for name := range want {
		names[name] = true
	}
	for name := range got {
		names[name] = true
	}
	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)
	for _, name := range sorted {
		w, inPrefixed := want[name]
		g, inUnprefixed := got[name]
		switch {
		case !inPrefixed:
			return diagnostic.Invariantf(diagnostic.CodeCompatFieldMismatch, []int{r.file.prefixed, g.line}, "%s only in the unprefixed representation", name)
		case !inUnprefixed:
			return diagnostic.Invariantf(diagnostic.CodeCompatFieldMismatch, []int{w.line, r.file.unprefixed}, "%s only in the prefixed representation", name)
		case w.text != g.text:
			return diagnostic.Invariantf(diagnostic.CodeCompatFieldMismatch, []int{w.line, g.line}, "%s differs between representations", name)
		}
	}
	return nil
}

func (r *representations) dangling() error {
	for _, rec := range r.records {
		if rec.prefixed != 0 && rec.unprefixed == 0 {
			return diagnostic.Invariantf(diagnostic.CodeCompatDangling, []int{rec.prefixed}, "prefixed %s has no unprefixed counterpart", rec.what)
		}
	}
	return nil
}
