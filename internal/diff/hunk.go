package diff

import (
	"strconv"

	"github.com/nicolagi/hintful/internal/event"
)

// See https://www.gnu.org/software/diffutils/manual/html_node/Hunks.html.
type hunk struct {
	// Lines before the hunk, and lines in the hunk, per side.
	offset event.Sides[int]
	count  event.Sides[int]

	lines []event.ContentLine

	// Counts the number of lines since the last difference. Used to decide when
	// to close a hunk. For a unified diff with 3 lines of context, for example,
	// the hunk is definitely closed after 7 common lines (4 need to be removed
	// from the hunk). In other words, the maximum distance between lines marked
	// as changed, in the same hunk, is 6.
	sinceLastDiff int

	context int
}

func newHunk(offset event.Sides[int], backfill []event.ContentLine, context int) *hunk {
	l := len(backfill)
	return &hunk{
		offset:  event.Pair(offset[event.Left]-l, offset[event.Right]-l),
		count:   event.Pair(l, l),
		lines:   backfill,
		context: context,
	}
}

func (h *hunk) append(line event.ContentLine) {
	h.lines = append(h.lines, line)
	for _, side := range event.BothSides {
		if line.Kind.Has(side) {
			h.count[side]++
		}
	}
	if line.Kind == event.BothContent {
		h.sinceLastDiff++
	} else {
		h.sinceLastDiff = 0
	}
}

func (h *hunk) isComplete() bool {
	return h.sinceLastDiff >= 2*h.context+1
}

// trim removes the common lines beyond the context from the end of the hunk
// and returns them.
func (h *hunk) trim() []event.ContentLine {
	if h.sinceLastDiff <= h.context {
		return nil
	}
	delc := h.sinceLastDiff - h.context
	del := h.lines[len(h.lines)-delc:]
	h.lines = h.lines[:len(h.lines)-delc]
	for _, side := range event.BothSides {
		h.count[side] -= delc
	}
	h.sinceLastDiff = h.context
	return del
}

// start is the line number in a hunk header: that of the first line of the
// range, or that of the line before an empty range.
func start(offset, count int) int {
	if count == 0 {
		return offset
	}
	return offset + 1
}

// events returns the hunk as a header, its content lines, and the end of hunk.
func (h *hunk) events() []event.Event {
	var key event.HunkKey
	header := event.HunkHeader{Grammar: event.GrammarUnified}
	for _, side := range event.BothSides {
		key.Start[side] = start(h.offset[side], h.count[side])
		key.Count[side] = h.count[side]
		header.StartRaw[side] = strconv.Itoa(key.Start[side])
		if h.count[side] != 1 {
			header.CountRaw[side] = "," + strconv.Itoa(h.count[side])
		}
	}
	header.Key = key
	out := []event.Event{header}
	var content event.Sides[string]
	for _, line := range h.lines {
		out = append(out, line)
		for _, side := range event.BothSides {
			if line.Kind.Has(side) {
				content[side] += line.Content
			}
		}
	}
	return append(out, event.EndHunk{Key: key, Content: content})
}
