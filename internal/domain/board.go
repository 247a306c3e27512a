package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Board is the root aggregate: an ordered set of columns.
type Board struct {
	ID             string
	Title          string
	ColumnOrderIDs []string
	Columns        []Column
}

// NewBoard constructs an empty board.
func NewBoard(id, title string) (Board, error) {
	id = strings.TrimSpace(id)
	title = strings.TrimSpace(title)
	if id == "" {
		return Board{}, ErrInvalidID
	}
	if title == "" {
		return Board{}, ErrInvalidName
	}
	return Board{ID: id, Title: title}, nil
}

// ColumnIDs returns the id sequence of the board's columns.
func (b Board) ColumnIDs() []string {
	ids := make([]string, 0, len(b.Columns))
	for _, column := range b.Columns {
		ids = append(ids, column.ID)
	}
	return ids
}

// SyncColumnOrder recomputes ColumnOrderIDs from the column sequence.
func (b *Board) SyncColumnOrder() {
	b.ColumnOrderIDs = b.ColumnIDs()
}

// Column returns the column with id.
func (b Board) Column(id string) (Column, bool) {
	idx := slices.IndexFunc(b.Columns, func(c Column) bool { return c.ID == id })
	if idx < 0 {
		return Column{}, false
	}
	return b.Columns[idx], true
}

// Clone returns a deep copy of the board.
func (b Board) Clone() Board {
	b.ColumnOrderIDs = slices.Clone(b.ColumnOrderIDs)
	columns := make([]Column, len(b.Columns))
	for i, column := range b.Columns {
		columns[i] = column.Clone()
	}
	b.Columns = columns
	return b
}

// Validate checks the id bijections between order lists and stored items.
func (b Board) Validate() error {
	if strings.TrimSpace(b.ID) == "" {
		return ErrInvalidID
	}
	if err := checkBijection(b.ColumnOrderIDs, b.ColumnIDs()); err != nil {
		return fmt.Errorf("board %s columns: %w", b.ID, err)
	}
	seenCards := map[string]struct{}{}
	for _, column := range b.Columns {
		if column.BoardID != b.ID {
			return fmt.Errorf("column %s board id %q: %w", column.ID, column.BoardID, ErrInvalidID)
		}
		if err := checkBijection(column.CardOrderIDs, column.CardIDs()); err != nil {
			return fmt.Errorf("column %s cards: %w", column.ID, err)
		}
		for _, card := range column.Cards {
			if card.ColumnID != column.ID {
				return fmt.Errorf("card %s column id %q: %w", card.ID, card.ColumnID, ErrInvalidColumnID)
			}
			if _, ok := seenCards[card.ID]; ok {
				return fmt.Errorf("card %s: %w", card.ID, ErrDuplicateID)
			}
			seenCards[card.ID] = struct{}{}
		}
	}
	return nil
}

// checkBijection verifies that order and ids hold the same unique set.
func checkBijection(order, ids []string) error {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			return ErrInvalidID
		}
		if _, ok := seen[id]; ok {
			return fmt.Errorf("%s: %w", id, ErrDuplicateID)
		}
		seen[id] = struct{}{}
	}
	if len(order) != len(ids) {
		return ErrOrderMismatch
	}
	ordered := make(map[string]struct{}, len(order))
	for _, id := range order {
		if _, ok := seen[id]; !ok {
			return fmt.Errorf("%s: %w", id, ErrOrderMismatch)
		}
		if _, ok := ordered[id]; ok {
			return fmt.Errorf("%s: %w", id, ErrDuplicateID)
		}
		ordered[id] = struct{}{}
	}
	return nil
}
