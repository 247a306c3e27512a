package dnd

import "github.com/evanschultz/kanboard/internal/domain"

// Kind identifies what is being dragged.
type Kind int

// KindNone and related constants enumerate dragged item kinds.
const (
	KindNone Kind = iota
	KindColumn
	KindCard
)

// String returns the log-friendly kind name.
func (k Kind) String() string {
	switch k {
	case KindColumn:
		return "column"
	case KindCard:
		return "card"
	default:
		return "none"
	}
}

// State is the drag session state machine position.
type State int

// Idle and related constants enumerate drag session states.
const (
	Idle State = iota
	DraggingColumn
	DraggingCard
)

// String returns the log-friendly state name.
func (s State) String() string {
	switch s {
	case DraggingColumn:
		return "dragging_column"
	case DraggingCard:
		return "dragging_card"
	default:
		return "idle"
	}
}

// Subject identifies the item a drag event refers to. ColumnID is set only when
// the subject is a card.
type Subject struct {
	ID       string
	ColumnID string
}

// IsCard reports whether the subject refers to a card.
func (s Subject) IsCard() bool {
	return s.ColumnID != ""
}

// DraggedItem is the tagged variant captured at drag start. Exactly one of
// Column and Card is set, matching Kind.
type DraggedItem struct {
	Kind   Kind
	ID     string
	Column *domain.Column
	Card   *domain.Card
	// OriginColumnID is the column a dragged card started in.
	OriginColumnID string
}

// Session is the transient state of one drag gesture.
type Session struct {
	GestureID string
	Item      DraggedItem
	// Origin is the frozen originating column of a card drag. It is never mutated
	// while the gesture is active.
	Origin *domain.Column
	// LastOverID is the last successfully resolved collision target.
	LastOverID string
}

// State returns the session's state machine position.
func (s Session) State() State {
	switch s.Item.Kind {
	case KindColumn:
		return DraggingColumn
	case KindCard:
		return DraggingCard
	default:
		return Idle
	}
}

// Active reports whether a gesture is in progress.
func (s Session) Active() bool {
	return s.State() != Idle
}
