// Package dnd implements the drag-and-drop reordering engine for a board of columns
// and cards: drag session tracking, collision resolution and move computation.
//
// The engine is single-threaded. Callers deliver the events of one gesture in order
// (start, zero or more overs, end) and never overlap gestures.
package dnd

import (
	"slices"

	"github.com/evanschultz/kanboard/internal/domain"
	"github.com/evanschultz/kanboard/internal/order"
	"github.com/google/uuid"
)

// DragStart is delivered when the sensor activates a gesture.
type DragStart struct {
	Active Subject
}

// DragOver is delivered for every frame in which the sensor resolved a collision.
type DragOver struct {
	Active   Subject
	OverID   string
	Geometry Geometry
}

// DragEnd is delivered once when the gesture finishes. OverID is empty when the
// item was dropped outside every droppable region.
type DragEnd struct {
	Active   Subject
	OverID   string
	Geometry Geometry
}

// Op names the operation an event handler performed.
type Op string

// OpNone and related constants enumerate handler outcomes.
const (
	OpNone           Op = "none"
	OpStart          Op = "start"
	OpCrossMove      Op = "cross_move"
	OpReorderCards   Op = "reorder_cards"
	OpReorderColumns Op = "reorder_columns"
	OpCancel         Op = "cancel"
)

// Outcome reports what one event did to the engine's collection.
type Outcome struct {
	Op      Op
	Changed bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithGestureIDs sets the generator used for session gesture ids.
func WithGestureIDs(fn func() string) Option {
	return func(e *Engine) {
		if fn != nil {
			e.newGestureID = fn
		}
	}
}

// Engine owns the ordered column collection and the current drag session.
type Engine struct {
	boardID string
	title   string
	columns []domain.Column
	session Session

	// before holds the columns as they were when the gesture started.
	before []domain.Column
	// dirty is set once a drag-over frame changed the live columns.
	dirty bool

	newGestureID func() string
}

// NewEngine constructs an engine with an empty collection.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		columns:      []domain.Column{},
		newGestureID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load replaces the working copy with board, re-deriving column and card order
// from the board's order id lists. Any gesture in progress is dropped.
func (e *Engine) Load(board domain.Board) {
	columns := order.ApplyExternalOrder(board.Columns, board.ColumnOrderIDs, columnKey)
	for i := range columns {
		column := columns[i].Clone()
		column.Cards = order.ApplyExternalOrder(column.Cards, column.CardOrderIDs, cardKey)
		column.EnsurePlaceholder()
		column.SyncCardOrder()
		columns[i] = column
	}
	e.boardID = board.ID
	e.title = board.Title
	e.columns = columns
	e.resetSession()
}

// Board returns the current ordering as a board value.
func (e *Engine) Board() domain.Board {
	board := domain.Board{
		ID:      e.boardID,
		Title:   e.title,
		Columns: e.Columns(),
	}
	board.SyncColumnOrder()
	return board
}

// Columns returns the ordered columns. The card slices are shared with the engine
// and must be treated as read-only.
func (e *Engine) Columns() []domain.Column {
	return slices.Clone(e.columns)
}

// ColumnOrderIDs returns the id sequence of the ordered columns.
func (e *Engine) ColumnOrderIDs() []string {
	ids := make([]string, 0, len(e.columns))
	for _, column := range e.columns {
		ids = append(ids, column.ID)
	}
	return ids
}

// Session returns a copy of the current drag session.
func (e *Engine) Session() Session {
	return e.session
}

// Active returns the dragged item, or nil when idle.
func (e *Engine) Active() *DraggedItem {
	if !e.session.Active() {
		return nil
	}
	item := e.session.Item
	return &item
}

// HandleDragStart captures the dragged item and, for cards, freezes the column the
// card is leaving. A subject that is not in the collection leaves the engine idle.
func (e *Engine) HandleDragStart(ev DragStart) Outcome {
	e.resetSession()
	if ev.Active.ID == "" {
		return Outcome{Op: OpNone}
	}

	var item DraggedItem
	var origin *domain.Column
	if ev.Active.IsCard() {
		idx := e.columnOfCard(ev.Active.ID)
		if idx < 0 {
			return Outcome{Op: OpNone}
		}
		column := e.columns[idx].Clone()
		card := column.Cards[column.CardIndex(ev.Active.ID)]
		if card.Placeholder {
			return Outcome{Op: OpNone}
		}
		item = DraggedItem{Kind: KindCard, ID: card.ID, Card: &card, OriginColumnID: column.ID}
		origin = &column
	} else {
		idx := e.columnIndex(ev.Active.ID)
		if idx < 0 {
			return Outcome{Op: OpNone}
		}
		column := e.columns[idx].Clone()
		item = DraggedItem{Kind: KindColumn, ID: column.ID, Column: &column}
	}

	e.session = Session{
		GestureID: e.newGestureID(),
		Item:      item,
		Origin:    origin,
	}
	e.before = slices.Clone(e.columns)
	return Outcome{Op: OpStart, Changed: true}
}

// HandleDragOver gives live feedback for card drags by transferring the card into
// the hovered column whenever it differs from the card's current column.
func (e *Engine) HandleDragOver(ev DragOver) Outcome {
	if e.session.Item.Kind != KindCard {
		return Outcome{Op: OpNone}
	}
	if ev.Active.ID == "" || ev.OverID == "" || ev.Active.ID != e.session.Item.ID {
		return Outcome{Op: OpNone}
	}

	activeIdx := e.columnOfCard(ev.Active.ID)
	overIdx := e.overColumn(ev.OverID)
	if activeIdx < 0 || overIdx < 0 || activeIdx == overIdx {
		return Outcome{Op: OpNone}
	}

	e.columns = MoveCardBetweenColumns(e.columns, CrossMove{
		OverColumn:     e.columns[overIdx],
		OverCardID:     ev.OverID,
		ActiveColumnID: e.columns[activeIdx].ID,
		CardID:         ev.Active.ID,
		Card:           *e.session.Item.Card,
		Below:          ev.Geometry.BelowOver(),
	})
	e.dirty = true
	return Outcome{Op: OpCrossMove, Changed: true}
}

// HandleDragEnd commits the gesture and always returns the engine to idle.
//
// A gesture without a target restores the columns captured at drag start, so live
// preview moves never outlive the gesture.
func (e *Engine) HandleDragEnd(ev DragEnd) Outcome {
	defer e.resetSession()

	if !e.session.Active() {
		return Outcome{Op: OpNone}
	}
	if ev.Active.ID == "" || ev.OverID == "" || ev.Active.ID != e.session.Item.ID {
		return e.cancel()
	}

	switch e.session.Item.Kind {
	case KindCard:
		return e.endCardDrag(ev)
	case KindColumn:
		next, ok := ReorderColumns(e.columns, ev.Active.ID, ev.OverID)
		if !ok {
			return Outcome{Op: OpNone}
		}
		e.columns = next
		return Outcome{Op: OpReorderColumns, Changed: true}
	default:
		return Outcome{Op: OpNone}
	}
}

func (e *Engine) endCardDrag(ev DragEnd) Outcome {
	activeIdx := e.columnOfCard(ev.Active.ID)
	overIdx := e.overColumn(ev.OverID)
	if activeIdx < 0 || overIdx < 0 {
		// A target that no longer resolves ends the gesture like a drop on nothing.
		return e.cancel()
	}

	origin := e.session.Origin
	if origin.ID != e.columns[overIdx].ID {
		e.columns = MoveCardBetweenColumns(e.columns, CrossMove{
			OverColumn:     e.columns[overIdx],
			OverCardID:     ev.OverID,
			ActiveColumnID: e.columns[activeIdx].ID,
			CardID:         ev.Active.ID,
			Card:           *e.session.Item.Card,
			Below:          ev.Geometry.BelowOver(),
		})
		return Outcome{Op: OpCrossMove, Changed: true}
	}

	next, ok := ReorderCardsInColumn(e.columns, *origin, ev.Active.ID, ev.OverID)
	if !ok {
		return Outcome{Op: OpNone}
	}
	if stray := e.columns[activeIdx]; stray.ID != origin.ID {
		stray = stray.WithoutCard(ev.Active.ID)
		stray.EnsurePlaceholder()
		stray.SyncCardOrder()
		next[activeIdx] = stray
	}
	e.columns = next
	return Outcome{Op: OpReorderCards, Changed: true}
}

// cancel undoes live preview moves of the current gesture.
func (e *Engine) cancel() Outcome {
	if !e.dirty {
		return Outcome{Op: OpCancel}
	}
	e.columns = e.before
	return Outcome{Op: OpCancel, Changed: true}
}

func (e *Engine) resetSession() {
	e.session = Session{}
	e.before = nil
	e.dirty = false
}

func (e *Engine) columnIndex(id string) int {
	return order.IndexOf(e.columns, id, columnKey)
}

func (e *Engine) columnOfCard(cardID string) int {
	return slices.IndexFunc(e.columns, func(c domain.Column) bool {
		return c.HasCard(cardID)
	})
}

// overColumn maps a collision target to its column: a card id resolves to the
// column holding it, a column id to the column itself.
func (e *Engine) overColumn(overID string) int {
	if idx := e.columnOfCard(overID); idx >= 0 {
		return idx
	}
	return e.columnIndex(overID)
}
