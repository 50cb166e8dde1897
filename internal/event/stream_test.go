package event_test

import (
	"errors"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nicolagi/hintful/internal/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contentLine(k event.Kind, s string) event.Event {
	return event.ContentLine{Kind: k, Content: s}
}

func TestFold(t *testing.T) {
	t.Run("threads state and flushes at the end", func(t *testing.T) {
		// Emits every other event, then the count of events seen.
		step := func(n int, ev event.Event) (int, []event.Event, error) {
			n++
			if n%2 == 0 {
				return n, nil, nil
			}
			return n, []event.Event{ev}, nil
		}
		flush := func(n int) ([]event.Event, error) {
			return []event.Event{event.SimilarityIndex{Percent: string(rune('0' + n))}}, nil
		}
		in := event.Slice(
			contentLine(event.LeftContent, "a\n"),
			contentLine(event.RightContent, "b\n"),
			contentLine(event.BothContent, "c\n"),
		)
		got, err := event.Collect(event.Fold(in, 0, step, flush))
		require.NoError(t, err)
		want := []event.Event{
			contentLine(event.LeftContent, "a\n"),
			contentLine(event.BothContent, "c\n"),
			event.SimilarityIndex{Percent: "3"},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
	})
	t.Run("events preceding an error are delivered", func(t *testing.T) {
		boom := errors.New("boom")
		step := func(s struct{}, ev event.Event) (struct{}, []event.Event, error) {
			return s, []event.Event{ev}, boom
		}
		s := event.Fold(event.Slice(contentLine(event.LeftContent, "a\n")), struct{}{}, step, nil)
		ev, err := s.Next()
		require.NoError(t, err)
		assert.Equal(t, contentLine(event.LeftContent, "a\n"), ev)
		_, err = s.Next()
		assert.Equal(t, boom, err)
		_, err = s.Next()
		assert.Equal(t, boom, err)
	})
	t.Run("nil flush ends with EOF", func(t *testing.T) {
		step := func(s struct{}, ev event.Event) (struct{}, []event.Event, error) {
			return s, nil, nil
		}
		_, err := event.Fold(event.Slice(), struct{}{}, step, nil).Next()
		assert.Equal(t, io.EOF, err)
	})
}

func TestDrain(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	s := event.StreamFunc(func() (event.Event, error) {
		calls++
		if calls == 3 {
			return nil, boom
		}
		return event.EndFile{}, nil
	})
	assert.Equal(t, boom, event.Drain(s))
	assert.NoError(t, event.Drain(event.Slice(event.EndFile{}, event.EndFile{})))
}
