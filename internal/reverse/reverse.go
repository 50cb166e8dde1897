// Package reverse turns a diff into its converse by swapping sides.
package reverse

import "github.com/nicolagi/hintful/internal/event"

// Reverse swaps left and right in every event of up. Applying it twice
// gives back the original events.
func Reverse(up event.Stream) event.Stream {
	return event.Map(up, Event)
}

// Event returns the converse of ev.
func Event(ev event.Event) (event.Event, error) {
	switch e := ev.(type) {
	case event.FileHeader:
		e.Paths = e.Paths.Flip()
		return e, nil
	case event.IndexLine:
		e.File = e.File.Flip()
		e.OIDs = e.OIDs.Flip()
		return e, nil
	case event.Labels:
		e.File = e.File.Flip()
		e.Labels = e.Labels.Flip()
		e.EOL = e.EOL.Flip()
		return e, nil
	case event.Rename:
		e.File = e.File.Flip()
		e.Paths = e.Paths.Flip()
		e.EOL = e.EOL.Flip()
		return e, nil
	case event.SimilarityIndex:
		e.File = e.File.Flip()
		return e, nil
	case event.FileModeChange:
		e.File = e.File.Flip()
		e.Side = e.Side.Flip()
		return e, nil
	case event.HunkHeader:
		e.Key = e.Key.Flip()
		e.StartRaw = e.StartRaw.Flip()
		e.CountRaw = e.CountRaw.Flip()
		return e, nil
	case event.ContentLine:
		e.Kind = e.Kind.Flip()
		e.Membership = event.FlipColumns(e.Membership)
		e.Masked = e.Masked.Flip()
		return e, nil
	case event.SnippetActivate:
		e.Columns = event.FlipColumns(e.Columns)
		return e, nil
	case event.SnippetDeactivate:
		e.Columns = event.FlipColumns(e.Columns)
		return e, nil
	case event.SnippetOpen:
		e.Side = e.Side.Flip()
		return e, nil
	case event.SnippetEnd:
		e.Column ^= 1
		return e, nil
	case event.EndHunk:
		e.Key = e.Key.Flip()
		e.Content = e.Content.Flip()
		return e, nil
	case event.EndFile:
		e.File = e.File.Flip()
		return e, nil
	case event.Hunk:
		header, err := Event(e.Header)
		if err != nil {
			return nil, err
		}
		end, err := Event(e.End)
		if err != nil {
			return nil, err
		}
		contents, err := all(e.Contents)
		if err != nil {
			return nil, err
		}
		e.Header = header.(event.HunkHeader)
		e.End = end.(event.EndHunk)
		e.Contents = contents
		return e, nil
	case event.File:
		header, err := Event(e.Header)
		if err != nil {
			return nil, err
		}
		end, err := Event(e.End)
		if err != nil {
			return nil, err
		}
		children, err := all(e.Children)
		if err != nil {
			return nil, err
		}
		e.Header = header.(event.FileHeader)
		e.End = end.(event.EndFile)
		e.Children = children
		return e, nil
	default:
		return nil, internalf("Event", "unhandled event %T", ev)
	}
}

func all(events []event.Event) ([]event.Event, error) {
	out := make([]event.Event, len(events))
	for i, ev := range events {
		var err error
		if out[i], err = Event(ev); err != nil {
			return nil, err
		}
	}
	return out, nil
}
