package event

import (
	"errors"
	"io"
)

// Stream is a pull-based sequence of events. Next returns io.EOF after the
// last event. After any other error the stream must not be used again.
type Stream interface {
	Next() (Event, error)
}

// StreamFunc adapts a function to the Stream interface.
type StreamFunc func() (Event, error)

func (f StreamFunc) Next() (Event, error) {
	return f()
}

// Slice returns a stream yielding the given events.
func Slice(events ...Event) Stream {
	return StreamFunc(func() (Event, error) {
		if len(events) == 0 {
			return nil, io.EOF
		}
		ev := events[0]
		events = events[1:]
		return ev, nil
	})
}

// Collect reads the stream to its end.
func Collect(s Stream) ([]Event, error) {
	var events []Event
	for {
		ev, err := s.Next()
		if errors.Is(err, io.EOF) {
			return events, nil
		}
		if err != nil {
			return events, err
		}
		events = append(events, ev)
	}
}

// Drain reads the stream to its end, discarding events. It terminates the
// validation pipelines.
func Drain(s Stream) error {
	for {
		_, err := s.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// Map applies f to each event of the stream.
func Map(up Stream, f func(Event) (Event, error)) Stream {
	return StreamFunc(func() (Event, error) {
		ev, err := up.Next()
		if err != nil {
			return nil, err
		}
		return f(ev)
	})
}

// Fold returns a stream that threads an explicit state through the events of
// up. For each upstream event, step returns the next state and the events to
// emit. At the end of up, flush returns the trailing events, if any.
func Fold[S any](up Stream, init S, step func(S, Event) (S, []Event, error), flush func(S) ([]Event, error)) Stream {
	return &fold[S]{
		up:    up,
		state: init,
		step:  step,
		flush: flush,
	}
}

type fold[S any] struct {
	up    Stream
	state S
	step  func(S, Event) (S, []Event, error)
	flush func(S) ([]Event, error)

	pending []Event
	err     error
	ended   bool
}

func (f *fold[S]) Next() (Event, error) {
	for len(f.pending) == 0 {
		if f.err != nil {
			return nil, f.err
		}
		if f.ended {
			return nil, io.EOF
		}
		ev, err := f.up.Next()
		if errors.Is(err, io.EOF) {
			f.ended = true
			if f.flush != nil {
				f.pending, f.err = f.flush(f.state)
			}
			continue
		}
		if err != nil {
			f.err = err
			continue
		}
		f.state, f.pending, f.err = f.step(f.state, ev)
	}
	ev := f.pending[0]
	f.pending = f.pending[1:]
	return ev, nil
}
