package diff

import (
	"github.com/andreyvit/diff"
	"github.com/nicolagi/hintful/internal/event"
)

// Unified returns the hunks of a unified diff from a to b, with the given
// number of context lines. Both texts are taken to end with a newline. The
// stream is empty if the texts have the same lines.
func Unified(a, b string, contextLines int) event.Stream {
	return event.Slice(hunks(diff.LineDiffAsLines(a, b), contextLines)...)
}

func hunks(lines []string, contextLines int) []event.Event {
	var out []event.Event

	// While processing lines, we're either in a hunk or in common segment. The
	// hunk is nil if we are in a common segment.
	var h *hunk

	// When we're not in the middle of a hunk, we keep the most recent common
	// lines in a ring buffer. When starting a new hunk, the common lines will
	// be backfilled into the hunk and the ring buffer will be emptied out.
	common := newRingBuffer(contextLines)

	var offset event.Sides[int]
	for _, text := range lines {
		if text == "" {
			continue
		}
		line := event.ContentLine{Content: text[1:] + "\n"}
		switch text[0] {
		case '-':
			line.Kind = event.LeftContent
		case '+':
			line.Kind = event.RightContent
		default:
			line.Kind = event.BothContent
		}
		if line.Kind == event.BothContent {
			// A common line. If in the middle of a hunk, we might get to the
			// point where a hunk cannot be extended so we can emit it and add
			// the following common lines to the ring buffer rather than the
			// hunk.
			if h != nil {
				h.append(line)
				if h.isComplete() {
					for _, l := range h.trim() {
						common.enqueue(l)
					}
					out = append(out, h.events()...)
					h = nil
				}
			} else {
				common.enqueue(line)
			}
		} else {
			if h == nil {
				h = newHunk(offset, common.dequeueAll(), contextLines)
			}
			h.append(line)
		}
		for _, side := range event.BothSides {
			if line.Kind.Has(side) {
				offset[side]++
			}
		}
	}
	if h != nil {
		h.trim()
		out = append(out, h.events()...)
	}
	return out
}
