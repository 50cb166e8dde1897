// Package event defines the canonical representation shared by all diff
// dialects: a closed set of event types, produced one at a time by the
// parser, transformed by the pipeline stages, and consumed by the formatter.
package event

// Meta is embedded in every event.
type Meta struct {
	// Prefix is "|" for the hintful representation in a compat diff,
	// empty otherwise.
	Prefix string

	// Line is the 1-based input line the event comes from, or 0 for
	// synthesized events.
	Line int
}

func (m Meta) meta() Meta {
	return m
}

// Event is one of the types in this package. The set is closed: stages
// switch on the concrete type and treat anything else as an internal error.
type Event interface {
	meta() Meta
	withMeta(Meta) Event
}

func PrefixOf(ev Event) string {
	return ev.meta().Prefix
}

func LineOf(ev Event) int {
	return ev.meta().Line
}

// Reprefix returns a copy of ev, and of any child events, with the given prefix.
func Reprefix(ev Event, prefix string) Event {
	m := ev.meta()
	m.Prefix = prefix
	switch e := ev.(type) {
	case Hunk:
		e.Meta = m
		e.Header.Prefix = prefix
		e.End.Prefix = prefix
		e.Contents = reprefixAll(e.Contents, prefix)
		return e
	case File:
		e.Meta = m
		e.Header.Prefix = prefix
		e.End.Prefix = prefix
		e.Children = reprefixAll(e.Children, prefix)
		return e
	default:
		return ev.withMeta(m)
	}
}

func reprefixAll(events []Event, prefix string) []Event {
	out := make([]Event, len(events))
	for i, ev := range events {
		out[i] = Reprefix(ev, prefix)
	}
	return out
}

// HunkKey identifies a hunk within a document, independently of its dialect.
type HunkKey struct {
	File  Sides[string]
	Start Sides[int]
	Count Sides[int]
}

func (k HunkKey) Flip() HunkKey {
	return HunkKey{
		File:  k.File.Flip(),
		Start: k.Start.Flip(),
		Count: k.Count.Flip(),
	}
}

// FileHeader begins a file comparison: diff --git a/x b/x.
type FileHeader struct {
	Meta
	Dialect Dialect
	Paths   Sides[string]
	EOL     string
}

// IndexLine is index 1234567..89abcde 100644.
type IndexLine struct {
	Meta
	File Sides[string]
	OIDs Sides[string]
	// Raw text after the object ids, including the separating spaces.
	Mode string
	EOL  string
}

// Labels is the --- and +++ line pair.
type Labels struct {
	Meta
	File   Sides[string]
	Labels Sides[string]
	EOL    Sides[string]
}

// Rename is the rename from and rename to line pair.
type Rename struct {
	Meta
	File  Sides[string]
	Paths Sides[string]
	EOL   Sides[string]
}

type SimilarityIndex struct {
	Meta
	File Sides[string]
	// Digits only; the percent sign is implied.
	Percent string
	EOL     string
}

// FileModeChange is "deleted file mode" (left) or "new file mode" (right).
type FileModeChange struct {
	Meta
	File Sides[string]
	Side Side
	Mode string
	EOL  string
}

type HunkHeader struct {
	Meta
	Key     HunkKey
	Grammar Grammar

	// Raw start and count strings. A count string includes its leading
	// comma and is empty when the count was omitted (meaning 1).
	StartRaw Sides[string]
	CountRaw Sides[string]

	// Total number of lines in the hunk body, hintful grammars only.
	DeclaredLines int
	DeclaredRaw   string

	// Number of parallel snippet columns, hintful grammar only.
	Columns int

	// Whether content lines end with $ or \ before the terminator.
	NewlineMarkers bool

	Comment string
	EOL     string
}

type ContentLine struct {
	Meta
	Kind Kind

	// Content, including its line terminator if it has one.
	Content string

	// Membership has one entry per snippet column, true if the line
	// belongs to the snippet active on that column.
	Membership []bool

	// Masked reports, per side, whether the line belongs to a snippet
	// masking that side, in which case it does not count as hunk content
	// on that side.
	Masked Sides[bool]

	// Physical terminator after a \ newline marker.
	EOL string

	// The glued no newline marker line, terminator included.
	Marker string
}

// SnippetActivate starts the named snippet on the marked columns.
type SnippetActivate struct {
	Meta
	Name    string
	Columns []bool
	EOL     string
}

// SnippetDeactivate ends the snippets on the marked columns.
type SnippetDeactivate struct {
	Meta
	Columns []bool
	EOL     string
}

// SnippetOpen starts a snippet on one side in the legacy grammar,
// ending any snippet already open there. An empty name only ends it.
type SnippetOpen struct {
	Meta
	Side Side
	Name string
	EOL  string
}

// SnippetEnd is synthesized when a snippet stops being active.
type SnippetEnd struct {
	Meta
	Name string
	// Column the snippet was active on. In the legacy grammar, the side.
	Column    int
	Content   string
	StartLine int
}

// EndHunk carries the text accumulated on each side, snippet content excluded.
type EndHunk struct {
	Meta
	Key     HunkKey
	Content Sides[string]
}

type EndFile struct {
	Meta
	File Sides[string]
}

// Hunk is a hunk folded into one event by group.Hunks.
type Hunk struct {
	Meta
	Header   HunkHeader
	Contents []Event
	End      EndHunk
}

// File is a file comparison folded into one event by group.Files.
type File struct {
	Meta
	Header   FileHeader
	Children []Event
	End      EndFile
}

func (e FileHeader) withMeta(m Meta) Event        { e.Meta = m; return e }
func (e IndexLine) withMeta(m Meta) Event         { e.Meta = m; return e }
func (e Labels) withMeta(m Meta) Event            { e.Meta = m; return e }
func (e Rename) withMeta(m Meta) Event            { e.Meta = m; return e }
func (e SimilarityIndex) withMeta(m Meta) Event   { e.Meta = m; return e }
func (e FileModeChange) withMeta(m Meta) Event    { e.Meta = m; return e }
func (e HunkHeader) withMeta(m Meta) Event        { e.Meta = m; return e }
func (e ContentLine) withMeta(m Meta) Event       { e.Meta = m; return e }
func (e SnippetActivate) withMeta(m Meta) Event   { e.Meta = m; return e }
func (e SnippetDeactivate) withMeta(m Meta) Event { e.Meta = m; return e }
func (e SnippetOpen) withMeta(m Meta) Event       { e.Meta = m; return e }
func (e SnippetEnd) withMeta(m Meta) Event        { e.Meta = m; return e }
func (e EndHunk) withMeta(m Meta) Event           { e.Meta = m; return e }
func (e EndFile) withMeta(m Meta) Event           { e.Meta = m; return e }
func (e Hunk) withMeta(m Meta) Event              { e.Meta = m; return e }
func (e File) withMeta(m Meta) Event              { e.Meta = m; return e }
