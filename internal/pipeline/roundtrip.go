package pipeline

import (
	"bytes"
	"strings"

	"github.com/nicolagi/hintful/internal/diagnostic"
	"github.com/nicolagi/hintful/internal/diff"
	"github.com/nicolagi/hintful/internal/event"
	"github.com/nicolagi/hintful/internal/format"
	"github.com/nicolagi/hintful/internal/parse"
	log "github.com/sirupsen/logrus"
)

const roundTripContextLines = 3

// CheckRoundTrip parses input in the given mode and formats it back. It
// fails with code roundtrip, citing the first line that differs, unless the
// result is identical to the input. The differences are logged as a unified
// diff at warning level.
func CheckRoundTrip(input []byte, mode parse.Mode) error {
	var b bytes.Buffer
	if err := format.Write(&b, parse.New(bytes.NewReader(input), mode)); err != nil {
		return err
	}
	if bytes.Equal(input, b.Bytes()) {
		return nil
	}
	first := 1
	if ev, err := diff.Unified(string(input), b.String(), 0).Next(); err == nil {
		if h, ok := ev.(event.HunkHeader); ok {
			first = h.Key.Start[event.Left]
			if h.Key.Count[event.Left] == 0 {
				first++
			}
		}
	}
	var d strings.Builder
	if err := format.Write(&d, diff.Unified(string(input), b.String(), roundTripContextLines)); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"mode": mode.String(),
		"diff": d.String(),
	}).Warning("Formatted input differs")
	return diagnostic.Invariantf(diagnostic.CodeRoundTrip, []int{first}, "formatting the parsed %s diff does not reproduce it", mode)
}
