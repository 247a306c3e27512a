package dnd

import (
	"testing"

	"github.com/evanschultz/kanboard/internal/domain"
	"github.com/stretchr/testify/require"
)

const testBoardID = "b1"

// newTestColumn builds a column holding real cards with the given ids.
func newTestColumn(t *testing.T, id string, cardIDs ...string) domain.Column {
	t.Helper()
	column, err := domain.NewColumn(id, testBoardID, "Column "+id)
	require.NoError(t, err)
	for _, cardID := range cardIDs {
		card, err := domain.NewCard(domain.CardInput{
			ID:       cardID,
			BoardID:  testBoardID,
			ColumnID: id,
			Title:    "Card " + cardID,
		})
		require.NoError(t, err)
		column.Cards = append(column.Cards, card)
	}
	column.SyncCardOrder()
	return column
}

func newTestBoard(columns ...domain.Column) domain.Board {
	board := domain.Board{ID: testBoardID, Title: "Test", Columns: columns}
	board.SyncColumnOrder()
	return board
}

func newTestEngine(t *testing.T, columns ...domain.Column) *Engine {
	t.Helper()
	seq := 0
	e := NewEngine(WithGestureIDs(func() string {
		seq++
		return "g" + string(rune('0'+seq))
	}))
	e.Load(newTestBoard(columns...))
	return e
}

func columnByID(t *testing.T, columns []domain.Column, id string) domain.Column {
	t.Helper()
	for _, column := range columns {
		if column.ID == id {
			return column
		}
	}
	t.Fatalf("column %q not found", id)
	return domain.Column{}
}

// requireConsistent checks the order id invariants and the placeholder invariant.
func requireConsistent(t *testing.T, e *Engine) {
	t.Helper()
	board := e.Board()
	require.Equal(t, board.ColumnIDs(), e.ColumnOrderIDs())
	for _, column := range e.Columns() {
		require.Equal(t, column.CardIDs(), column.CardOrderIDs, "column %s", column.ID)
		require.NotEmpty(t, column.Cards, "column %s", column.ID)
		hasReal := len(column.RealCards()) > 0
		hasPlaceholder := len(column.RealCards()) != len(column.Cards)
		require.NotEqual(t, hasReal, hasPlaceholder, "column %s placeholder state", column.ID)
		for _, card := range column.Cards {
			require.Equal(t, column.ID, card.ColumnID)
		}
	}
	require.NoError(t, board.Validate())
}

func cardSubject(id, columnID string) Subject {
	return Subject{ID: id, ColumnID: columnID}
}

func columnSubject(id string) Subject {
	return Subject{ID: id}
}
