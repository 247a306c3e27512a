package domain

import (
	"slices"
	"strings"
)

// Column represents an ordered container of cards within a board.
type Column struct {
	ID           string
	BoardID      string
	Title        string
	CardOrderIDs []string
	Cards        []Card
}

// NewColumn constructs an empty column. Callers add cards and then call SyncCardOrder.
func NewColumn(id, boardID, title string) (Column, error) {
	id = strings.TrimSpace(id)
	boardID = strings.TrimSpace(boardID)
	title = strings.TrimSpace(title)
	if id == "" || boardID == "" {
		return Column{}, ErrInvalidID
	}
	if title == "" {
		return Column{}, ErrInvalidName
	}
	return Column{
		ID:      id,
		BoardID: boardID,
		Title:   title,
	}, nil
}

// Clone returns a copy that shares no slices with c.
func (c Column) Clone() Column {
	c.Cards = slices.Clone(c.Cards)
	c.CardOrderIDs = slices.Clone(c.CardOrderIDs)
	return c
}

// CardIDs returns the id sequence of the column's cards.
func (c Column) CardIDs() []string {
	ids := make([]string, 0, len(c.Cards))
	for _, card := range c.Cards {
		ids = append(ids, card.ID)
	}
	return ids
}

// SyncCardOrder recomputes CardOrderIDs from the card sequence.
func (c *Column) SyncCardOrder() {
	c.CardOrderIDs = c.CardIDs()
}

// HasCard reports whether the column currently stores cardID.
func (c Column) HasCard(cardID string) bool {
	return c.CardIndex(cardID) >= 0
}

// CardIndex returns the position of cardID or -1.
func (c Column) CardIndex(cardID string) int {
	return slices.IndexFunc(c.Cards, func(card Card) bool {
		return card.ID == cardID
	})
}

// RealCards returns the cards that are not placeholders.
func (c Column) RealCards() []Card {
	out := make([]Card, 0, len(c.Cards))
	for _, card := range c.Cards {
		if card.Placeholder {
			continue
		}
		out = append(out, card)
	}
	return out
}

// IsEmpty reports whether the column holds no real cards.
func (c Column) IsEmpty() bool {
	for _, card := range c.Cards {
		if !card.Placeholder {
			return false
		}
	}
	return true
}

// WithoutCard drops every card with cardID. The receiver is not modified.
func (c Column) WithoutCard(cardID string) Column {
	c.Cards = slices.DeleteFunc(slices.Clone(c.Cards), func(card Card) bool {
		return card.ID == cardID
	})
	return c
}

// WithoutPlaceholder drops any placeholder card. The receiver is not modified.
func (c Column) WithoutPlaceholder() Column {
	c.Cards = slices.DeleteFunc(slices.Clone(c.Cards), func(card Card) bool {
		return card.Placeholder
	})
	return c
}

// EnsurePlaceholder inserts a placeholder when the column has zero cards.
func (c *Column) EnsurePlaceholder() {
	if len(c.Cards) > 0 {
		return
	}
	c.Cards = []Card{NewPlaceholderCard(*c)}
}
