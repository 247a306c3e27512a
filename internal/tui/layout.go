package tui

import (
	"github.com/evanschultz/kanboard/internal/dnd"
	"github.com/evanschultz/kanboard/internal/domain"
)

// boardTop is the first terminal row of the columns, below the title and a blank line.
const boardTop = 2

// columnHeaderRows covers the column title and the rule under it.
const columnHeaderRows = 2

// LayoutConfig sizes the board in terminal cells.
type LayoutConfig struct {
	ColumnWidth int
	CardHeight  int
	ColumnGap   int
}

// DefaultLayoutConfig returns the default board geometry.
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{ColumnWidth: 28, CardHeight: 3, ColumnGap: 1}
}

func (c LayoutConfig) normalized() LayoutConfig {
	def := DefaultLayoutConfig()
	if c.ColumnWidth < 8 {
		c.ColumnWidth = def.ColumnWidth
	}
	if c.CardHeight < 1 {
		c.CardHeight = def.CardHeight
	}
	if c.ColumnGap < 0 {
		c.ColumnGap = def.ColumnGap
	}
	return c
}

// cell is an integer terminal rectangle; x and y ranges are half-open.
type cell struct {
	x, y, w, h int
}

func (c cell) contains(x, y int) bool {
	return x >= c.x && x < c.x+c.w && y >= c.y && y < c.y+c.h
}

// rect converts the cell to an edge-inclusive dnd.Rect spanning its first and last
// rows and columns, so vertically adjacent cards never share a row.
func (c cell) rect() dnd.Rect {
	return dnd.Rect{
		Left:   float64(c.x),
		Top:    float64(c.y),
		Width:  float64(max(c.w-1, 0)),
		Height: float64(max(c.h-1, 0)),
	}
}

type cardBox struct {
	card domain.Card
	box  cell
}

type columnBox struct {
	column domain.Column
	box    cell
	cards  []cardBox
}

// boardLayout places every column and card of one render state.
type boardLayout struct {
	columns []columnBox
	height  int
}

// layoutBoard computes column and card rectangles. bodyHeight is the number of rows
// available to columns; columns grow past it when their cards need more room.
func layoutBoard(columns []domain.Column, cfg LayoutConfig, bodyHeight int) boardLayout {
	cfg = cfg.normalized()
	height := bodyHeight
	for _, column := range columns {
		height = max(height, columnHeaderRows+len(column.Cards)*cfg.CardHeight)
	}

	out := boardLayout{columns: make([]columnBox, 0, len(columns)), height: height}
	for i, column := range columns {
		left := i * (cfg.ColumnWidth + cfg.ColumnGap)
		cb := columnBox{
			column: column,
			box:    cell{x: left, y: boardTop, w: cfg.ColumnWidth, h: height},
			cards:  make([]cardBox, 0, len(column.Cards)),
		}
		for j, card := range column.Cards {
			cb.cards = append(cb.cards, cardBox{
				card: card,
				box: cell{
					x: left,
					y: boardTop + columnHeaderRows + j*cfg.CardHeight,
					w: cfg.ColumnWidth,
					h: cfg.CardHeight,
				},
			})
		}
		out.columns = append(out.columns, cb)
	}
	return out
}

// hitTest returns the draggable subject under the cell (x, y). Cards win over their
// column; placeholders are not draggable, so pressing one grabs nothing.
func (l boardLayout) hitTest(x, y int) (dnd.Subject, cell, bool) {
	for _, column := range l.columns {
		if !column.box.contains(x, y) {
			continue
		}
		for _, cb := range column.cards {
			if !cb.box.contains(x, y) {
				continue
			}
			if cb.card.Placeholder {
				return dnd.Subject{}, cell{}, false
			}
			return dnd.Subject{ID: cb.card.ID, ColumnID: column.column.ID}, cb.box, true
		}
		if y < column.box.y+columnHeaderRows {
			return dnd.Subject{ID: column.column.ID}, column.box, true
		}
		return dnd.Subject{}, cell{}, false
	}
	return dnd.Subject{}, cell{}, false
}

// regions lists every droppable rectangle, columns before their cards.
func (l boardLayout) regions() []dnd.Region {
	out := []dnd.Region{}
	for _, column := range l.columns {
		out = append(out, dnd.Region{ID: column.column.ID, Rect: column.box.rect()})
		for _, cb := range column.cards {
			out = append(out, dnd.Region{ID: cb.card.ID, Rect: cb.box.rect()})
		}
	}
	return out
}
