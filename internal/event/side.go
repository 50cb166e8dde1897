package event

import "strconv"

// Side is one of the two versions a diff relates.
type Side int

const (
	Left Side = iota
	Right
)

// BothSides lists the sides in canonical order, for iteration.
var BothSides = [2]Side{Left, Right}

func (s Side) Flip() Side {
	return 1 - s
}

func (s Side) String() string {
	switch s {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "Side(" + strconv.Itoa(int(s)) + ")"
	}
}

// Sides holds one value per side, indexed by Side.
type Sides[T any] [2]T

func Pair[T any](left, right T) Sides[T] {
	return Sides[T]{left, right}
}

func (p Sides[T]) Flip() Sides[T] {
	return Sides[T]{p[Right], p[Left]}
}

// Kind tells which sides a content line belongs to, and with what priority.
type Kind int

const (
	LeftContent Kind = iota
	RightContent
	BothContent
	// Common to both sides, but less relevant than ordinary context.
	LowPriorityContent
	// Shown to the reader, but part of neither side.
	IgnoredContent
)

// KindOf returns the kind of content belonging to the given side only.
func KindOf(s Side) Kind {
	if s == Left {
		return LeftContent
	}
	return RightContent
}

func (k Kind) Has(s Side) bool {
	switch k {
	case LeftContent:
		return s == Left
	case RightContent:
		return s == Right
	case BothContent, LowPriorityContent:
		return true
	default:
		return false
	}
}

func (k Kind) Flip() Kind {
	switch k {
	case LeftContent:
		return RightContent
	case RightContent:
		return LeftContent
	default:
		return k
	}
}

func (k Kind) String() string {
	switch k {
	case LeftContent:
		return "left"
	case RightContent:
		return "right"
	case BothContent:
		return "both"
	case LowPriorityContent:
		return "both-low-priority"
	case IgnoredContent:
		return "ignore"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Dialect is the grammar family of a file comparison.
type Dialect int

const (
	Unified Dialect = iota
	Hintful
)

func (d Dialect) String() string {
	switch d {
	case Unified:
		return "unified"
	case Hintful:
		return "hintful"
	default:
		return "Dialect(" + strconv.Itoa(int(d)) + ")"
	}
}

// Keyword is the word following "diff --" in a file header.
func (d Dialect) Keyword() string {
	if d == Hintful {
		return "hintful"
	}
	return "git"
}

// Grammar is the concrete syntax of one hunk.
type Grammar int

const (
	// @@ -a,b +c,d @@
	GrammarUnified Grammar = iota
	// @@ -a,b ^^N\ +c,d @@, with parallel snippet columns.
	GrammarHintful
	// @@ -a,b (N) +c,d @@, with <name and >name snippet lines.
	GrammarLegacy
)

func (g Grammar) Dialect() Dialect {
	if g == GrammarUnified {
		return Unified
	}
	return Hintful
}

func (g Grammar) String() string {
	switch g {
	case GrammarUnified:
		return "unified"
	case GrammarHintful:
		return "hintful"
	case GrammarLegacy:
		return "legacy"
	default:
		return "Grammar(" + strconv.Itoa(int(g)) + ")"
	}
}

// ColumnSide returns the side whose content a snippet column masks.
// Even columns belong to the left side, odd ones to the right side.
func ColumnSide(column int) Side {
	return Side(column % 2)
}

// FlipColumns swaps adjacent columns, so each column moves to the other side.
func FlipColumns(columns []bool) []bool {
	if columns == nil {
		return nil
	}
	flipped := make([]bool, len(columns))
	for i, v := range columns {
		if j := i ^ 1; j < len(columns) {
			flipped[j] = v
		} else {
			flipped[i] = v
		}
	}
	return flipped
}
