package dnd

import (
	"slices"

	"github.com/evanschultz/kanboard/internal/domain"
	"github.com/evanschultz/kanboard/internal/order"
)

func columnKey(c domain.Column) string { return c.ID }

func cardKey(c domain.Card) string { return c.ID }

// CrossMove describes one card transfer between two columns.
type CrossMove struct {
	// OverColumn is the hovered column as it was when the frame was resolved.
	OverColumn domain.Column
	// OverCardID is the hovered card, or the column id itself when no card was hit.
	OverCardID     string
	ActiveColumnID string
	CardID         string
	// Card is the dragged card snapshot captured at drag start.
	Card domain.Card
	// Below places the card after the hovered card instead of before it.
	Below bool
}

// MoveCardBetweenColumns transfers a card into OverColumn and returns the new column
// list. Only the two touched columns are replaced; every other element keeps its
// backing card slice. Repeating the call with the same input yields the same result.
func MoveCardBetweenColumns(columns []domain.Column, in CrossMove) []domain.Column {
	insertAt := len(in.OverColumn.Cards) + 1
	if overIdx := in.OverColumn.CardIndex(in.OverCardID); overIdx >= 0 {
		insertAt = overIdx
		if in.Below {
			insertAt++
		}
	}

	next := slices.Clone(columns)
	if activeIdx := order.IndexOf(next, in.ActiveColumnID, columnKey); activeIdx >= 0 {
		active := next[activeIdx].WithoutCard(in.CardID)
		active.EnsurePlaceholder()
		active.SyncCardOrder()
		next[activeIdx] = active
	}

	overIdx := order.IndexOf(next, in.OverColumn.ID, columnKey)
	if overIdx < 0 {
		return next
	}
	over := next[overIdx].WithoutPlaceholder().WithoutCard(in.CardID)
	insertAt = min(insertAt, len(over.Cards))
	over.Cards = slices.Insert(over.Cards, insertAt, in.Card.MovedTo(over.ID))
	over.SyncCardOrder()
	next[overIdx] = over
	return next
}

// ReorderCardsInColumn moves cardID onto the position of overID inside origin and
// stores the result in place of the live column with the same id. Positions come
// from origin, never from the live column. An overID that is not one of origin's
// cards moves the card to the end. It returns false when nothing could be located.
func ReorderCardsInColumn(columns []domain.Column, origin domain.Column, cardID, overID string) ([]domain.Column, bool) {
	idx := order.IndexOf(columns, origin.ID, columnKey)
	from := origin.CardIndex(cardID)
	if idx < 0 || from < 0 {
		return columns, false
	}
	to := origin.CardIndex(overID)
	if to < 0 {
		to = len(origin.Cards) - 1
	}

	next := slices.Clone(columns)
	column := next[idx]
	column.Cards = order.MoveWithinSequence(origin.Cards, from, to)
	column.SyncCardOrder()
	next[idx] = column
	return next, true
}

// ReorderColumns moves the column activeID onto the position of overID.
func ReorderColumns(columns []domain.Column, activeID, overID string) ([]domain.Column, bool) {
	if activeID == overID {
		return columns, false
	}
	from := order.IndexOf(columns, activeID, columnKey)
	to := order.IndexOf(columns, overID, columnKey)
	if from < 0 || to < 0 {
		return columns, false
	}
	return order.MoveWithinSequence(columns, from, to), true
}
