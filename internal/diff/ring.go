package diff

import "github.com/nicolagi/hintful/internal/event"

// ringBuffer keeps the most recent common lines seen between hunks, at most
// as many as the context size. Enqueueing into a full buffer drops the
// oldest line; a zero-size buffer keeps nothing.
type ringBuffer struct {
	lines []event.ContentLine
	ridx  int
	widx  int
	len   int
}

func newRingBuffer(sz int) *ringBuffer {
	return &ringBuffer{
		lines: make([]event.ContentLine, sz),
	}
}

func (rb *ringBuffer) incr(val int) int {
	return (val + 1) % len(rb.lines)
}

func (rb *ringBuffer) enqueue(line event.ContentLine) {
	if len(rb.lines) == 0 {
		return
	}
	if rb.len == len(rb.lines) {
		rb.ridx = rb.incr(rb.ridx)
	} else {
		rb.len++
	}
	rb.lines[rb.widx] = line
	rb.widx = rb.incr(rb.widx)
}

func (rb *ringBuffer) dequeueAll() []event.ContentLine {
	var lines []event.ContentLine
	for rb.len > 0 {
		lines = append(lines, rb.lines[rb.ridx])
		rb.ridx = rb.incr(rb.ridx)
		rb.len--
	}
	return lines
}
