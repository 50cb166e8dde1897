// Package pipeline assembles the named operations of the diff tools from the
// stages in the other packages. Every operation parses its input in one
// dialect, runs an ordered list of stages over the event stream, and either
// formats the result or, for validators, drains it.
package pipeline

import (
	"bytes"
	"context"
	"io"
	"sort"

	"github.com/nicolagi/hintful/internal/compat"
	"github.com/nicolagi/hintful/internal/convert"
	"github.com/nicolagi/hintful/internal/event"
	"github.com/nicolagi/hintful/internal/format"
	"github.com/nicolagi/hintful/internal/group"
	"github.com/nicolagi/hintful/internal/merge"
	"github.com/nicolagi/hintful/internal/parse"
	"github.com/nicolagi/hintful/internal/reverse"
	"github.com/nicolagi/hintful/internal/validate"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Options tune a run of an operation.
type Options struct {
	// Name of the input, for logging only.
	Input string

	SnippetScope validate.Scope

	// Check that formatting the parsed input reproduces it before running
	// the operation.
	RoundTrip bool
}

type stage func(event.Stream, Options) event.Stream

func plain(f func(event.Stream) event.Stream) stage {
	return func(s event.Stream, _ Options) event.Stream {
		return f(s)
	}
}

var (
	validateHunks   = plain(validate.Hunks)
	representations = plain(validate.Representations)
	groupHunks      = plain(group.Hunks)
	groupFiles      = plain(group.Files)
	ungroupHunks    = plain(group.UngroupHunks)
	ungroupFiles    = plain(group.UngroupFiles)
	toHintful       = plain(convert.ToHintful)
	canonicalOrder  = plain(convert.CanonicalOrder)
	toUnified       = plain(merge.Unprefixed)
	duplicate       = plain(compat.Duplicate)
	applyPrefixed   = plain(compat.ApplyPrefixedFiles)
	reversal        = plain(reverse.Reverse)
)

func snippets(s event.Stream, o Options) event.Stream {
	return validate.Snippets(s, o.SnippetScope)
}

// Operation is a named chain of stages.
type Operation struct {
	Name string
	// Dialect of the input.
	Mode parse.Mode
	// Validators write nothing.
	Output bool

	stages []stage
}

var operations = []Operation{
	{
		Name:   "reverse-unified-diff",
		Mode:   parse.UnifiedMode,
		Output: true,
		stages: []stage{reversal, canonicalOrder},
	},
	{
		Name:   "reverse-hintful-diff",
		Mode:   parse.HintfulMode,
		Output: true,
		stages: []stage{reversal},
	},
	{
		Name:   "reverse-compat-diff",
		Mode:   parse.CompatMode,
		Output: true,
		stages: []stage{reversal, canonicalOrder},
	},
	{
		Name:   "validate-unified-diff",
		Mode:   parse.UnifiedMode,
		stages: []stage{validateHunks},
	},
	{
		Name:   "validate-hintful-diff",
		Mode:   parse.HintfulMode,
		stages: []stage{snippets, validateHunks},
	},
	{
		Name:   "validate-compat-diff",
		Mode:   parse.CompatMode,
		stages: []stage{snippets, validateHunks, representations},
	},
	{
		Name:   "convert-hintful-diff-to-unified-diff",
		Mode:   parse.HintfulMode,
		Output: true,
		stages: []stage{snippets, validateHunks, toUnified},
	},
	{
		Name:   "convert-unified-diff-to-hintful-diff",
		Mode:   parse.UnifiedMode,
		Output: true,
		stages: []stage{validateHunks, groupHunks, toHintful, ungroupHunks},
	},
	{
		Name:   "convert-hintful-diff-to-compat-diff",
		Mode:   parse.HintfulMode,
		Output: true,
		stages: []stage{snippets, validateHunks, groupHunks, groupFiles, duplicate, ungroupFiles, ungroupHunks, toUnified},
	},
	{
		Name:   "convert-unified-diff-to-compat-diff",
		Mode:   parse.UnifiedMode,
		Output: true,
		stages: []stage{validateHunks, groupHunks, toHintful, groupFiles, duplicate, ungroupFiles, ungroupHunks, toUnified},
	},
	{
		Name:   "convert-compat-diff-to-unified-diff",
		Mode:   parse.CompatMode,
		Output: true,
		stages: []stage{snippets, validateHunks, representations, groupHunks, groupFiles, applyPrefixed, ungroupFiles, ungroupHunks, toUnified},
	},
	{
		Name:   "convert-compat-diff-to-hintful-diff",
		Mode:   parse.CompatMode,
		Output: true,
		stages: []stage{snippets, validateHunks, representations, groupHunks, groupFiles, applyPrefixed, ungroupFiles, toHintful, ungroupHunks},
	},
}

// Lookup returns the operation with the given name.
func Lookup(name string) (Operation, bool) {
	for _, op := range operations {
		if op.Name == name {
			return op, true
		}
	}
	return Operation{}, false
}

// Names returns the names of all operations, sorted.
func Names() []string {
	names := make([]string, len(operations))
	for i, op := range operations {
		names[i] = op.Name
	}
	sort.Strings(names)
	return names
}

// Stream returns the operation's output events for the given input events.
func (op Operation) Stream(s event.Stream, o Options) event.Stream {
	for _, st := range op.stages {
		s = st(s, o)
	}
	return s
}

// Run reads a diff from r and runs the operation on it, writing the result
// to w. The run stops at the first event after ctx is done.
func (op Operation) Run(ctx context.Context, r io.Reader, w io.Writer, o Options) error {
	logger := log.WithFields(log.Fields{
		"op":    op.Name,
		"input": o.Input,
	})
	logger.Debug("Starting")
	if o.RoundTrip {
		b, err := io.ReadAll(r)
		if err != nil {
			return errors.Wrapf(err, "reading %q", o.Input)
		}
		if err := CheckRoundTrip(b, op.Mode); err != nil {
			return err
		}
		r = bytes.NewReader(b)
	}
	var n int
	s := event.Map(parse.New(r, op.Mode), func(ev event.Event) (event.Event, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n++
		return ev, nil
	})
	s = op.Stream(s, o)
	var err error
	if op.Output {
		err = format.Write(w, s)
	} else {
		err = event.Drain(s)
	}
	logger = logger.WithField("events", n)
	if err != nil {
		logger.WithField("cause", err).Debug("Failed")
		return err
	}
	logger.Debug("Finished")
	return nil
}
