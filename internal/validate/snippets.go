// Package validate holds the observer stages that check the invariants the
// parser cannot check line by line. Each passes its input through unchanged
// and fails at the first violation.
package validate

import (
	"github.com/nicolagi/hintful/internal/diagnostic"
	"github.com/nicolagi/hintful/internal/event"
	"github.com/pkg/errors"
)

// Scope is how far a snippet name is known.
type Scope int

const (
	// One name, one content, for the whole input.
	DocumentScope Scope = iota
	// Names are forgotten at each file comparison.
	FileScope
)

func (s Scope) String() string {
	if s == FileScope {
		return "file"
	}
	return "global"
}

// ParseScope parses the value of the snippet-scope setting.
func ParseScope(s string) (Scope, error) {
	switch s {
	case "", "global":
		return DocumentScope, nil
	case "file":
		return FileScope, nil
	default:
		return 0, errors.Errorf("unknown snippet scope %q", s)
	}
}

type snippets struct {
	scope Scope
	seen  map[string]event.SnippetEnd
}

// Snippets checks that every snippet with a given name has the same content.
// Empty snippets are not compared.
func Snippets(up event.Stream, scope Scope) event.Stream {
	init := &snippets{scope: scope, seen: make(map[string]event.SnippetEnd)}
	return event.Fold(up, init, func(s *snippets, ev event.Event) (*snippets, []event.Event, error) {
		if err := s.check(ev); err != nil {
			return s, nil, err
		}
		return s, []event.Event{ev}, nil
	}, nil)
}

func (s *snippets) check(ev event.Event) error {
	switch e := ev.(type) {
	case event.FileHeader:
		if s.scope == FileScope {
			s.seen = make(map[string]event.SnippetEnd)
		}
	case event.SnippetEnd:
		if e.Content == "" {
			return nil
		}
		first, ok := s.seen[e.Name]
		if !ok {
			s.seen[e.Name] = e
			return nil
		}
		if first.Content != e.Content {
			return diagnostic.Invariantf(diagnostic.CodeSnippetMismatch, []int{first.StartLine, e.StartLine}, "snippet %q has different content than before", e.Name)
		}
	}
	return nil
}
