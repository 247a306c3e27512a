package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/evanschultz/kanboard/internal/domain"
	"github.com/evanschultz/kanboard/internal/order"
	"gopkg.in/yaml.v3"
)

// SnapshotVersion defines a package constant value.
const SnapshotVersion = "kanboard.board.v1"

// BoardSnapshot is the portable document form of one board.
type BoardSnapshot struct {
	Version        string           `json:"version,omitempty" yaml:"version,omitempty"`
	ID             string           `json:"_id" yaml:"_id"`
	Title          string           `json:"title" yaml:"title"`
	ColumnOrderIDs []string         `json:"columnOrderIds" yaml:"columnOrderIds"`
	Columns        []SnapshotColumn `json:"columns" yaml:"columns"`
}

// SnapshotColumn represents snapshot column data used by this package.
type SnapshotColumn struct {
	ID           string         `json:"_id" yaml:"_id"`
	BoardID      string         `json:"boardId,omitempty" yaml:"boardId,omitempty"`
	Title        string         `json:"title" yaml:"title"`
	CardOrderIDs []string       `json:"cardOrderIds" yaml:"cardOrderIds"`
	Cards        []SnapshotCard `json:"cards" yaml:"cards"`
}

// SnapshotCard represents snapshot card data used by this package.
type SnapshotCard struct {
	ID          string `json:"_id" yaml:"_id"`
	BoardID     string `json:"boardId,omitempty" yaml:"boardId,omitempty"`
	ColumnID    string `json:"columnId,omitempty" yaml:"columnId,omitempty"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Cover       string `json:"cover,omitempty" yaml:"cover,omitempty"`
}

// DecodeBoardSnapshot parses data as JSON or YAML depending on the extension of name.
func DecodeBoardSnapshot(name string, data []byte) (BoardSnapshot, error) {
	var snap BoardSnapshot
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&snap); err != nil {
			return BoardSnapshot{}, fmt.Errorf("decode json snapshot %q: %w", name, err)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&snap); err != nil {
			return BoardSnapshot{}, fmt.Errorf("decode yaml snapshot %q: %w", name, err)
		}
	default:
		return BoardSnapshot{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
	if snap.Version != "" && snap.Version != SnapshotVersion {
		return BoardSnapshot{}, fmt.Errorf("%w: unsupported version %q", ErrInvalidSnapshot, snap.Version)
	}
	return snap, nil
}

// EncodeBoardSnapshot renders snap in the format implied by the extension of name.
// An empty name or "-" selects JSON.
func EncodeBoardSnapshot(name string, snap BoardSnapshot) ([]byte, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); {
	case name == "" || name == "-" || ext == ".json":
		out, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode json snapshot: %w", err)
		}
		return append(out, '\n'), nil
	case ext == ".yaml" || ext == ".yml":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(snap); err != nil {
			return nil, fmt.Errorf("encode yaml snapshot: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode yaml snapshot: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// SnapshotFromBoard converts board to its document form with columns and cards
// laid out in their stored order. Placeholder cards are synthetic and never
// exported.
func SnapshotFromBoard(board domain.Board) BoardSnapshot {
	columns := board.Columns
	if board.ColumnOrderIDs != nil {
		columns = order.ApplyExternalOrder(columns, board.ColumnOrderIDs, func(c domain.Column) string { return c.ID })
	}
	snap := BoardSnapshot{
		Version:        SnapshotVersion,
		ID:             board.ID,
		Title:          board.Title,
		ColumnOrderIDs: make([]string, 0, len(columns)),
		Columns:        make([]SnapshotColumn, 0, len(columns)),
	}
	for _, column := range columns {
		cards := column.RealCards()
		if column.CardOrderIDs != nil {
			cards = order.ApplyExternalOrder(cards, column.CardOrderIDs, func(c domain.Card) string { return c.ID })
		}
		sc := SnapshotColumn{
			ID:           column.ID,
			BoardID:      column.BoardID,
			Title:        column.Title,
			CardOrderIDs: make([]string, 0, len(cards)),
			Cards:        make([]SnapshotCard, 0, len(cards)),
		}
		for _, card := range cards {
			sc.CardOrderIDs = append(sc.CardOrderIDs, card.ID)
			sc.Cards = append(sc.Cards, SnapshotCard{
				ID:          card.ID,
				BoardID:     card.BoardID,
				ColumnID:    card.ColumnID,
				Title:       card.Title,
				Description: card.Description,
				Cover:       card.Cover,
			})
		}
		snap.ColumnOrderIDs = append(snap.ColumnOrderIDs, column.ID)
		snap.Columns = append(snap.Columns, sc)
	}
	return snap
}

// ToBoard converts the snapshot to a domain board. Missing ids are filled from
// newID and back-references are derived from nesting. Missing order id lists
// default to document order; supplied lists are kept as-is so the engine can
// apply them.
func (s BoardSnapshot) ToBoard(newID IDGenerator) (domain.Board, error) {
	if newID == nil {
		newID = func() string { return "" }
	}
	boardID := strings.TrimSpace(s.ID)
	if boardID == "" {
		boardID = newID()
	}
	board, err := domain.NewBoard(boardID, s.Title)
	if err != nil {
		return domain.Board{}, fmt.Errorf("%w: board: %w", ErrInvalidSnapshot, err)
	}

	for i, sc := range s.Columns {
		columnID := strings.TrimSpace(sc.ID)
		if columnID == "" {
			columnID = newID()
		}
		column, err := domain.NewColumn(columnID, board.ID, sc.Title)
		if err != nil {
			return domain.Board{}, fmt.Errorf("%w: columns[%d]: %w", ErrInvalidSnapshot, i, err)
		}
		for j, scard := range sc.Cards {
			if domain.IsPlaceholderCardID(scard.ID) {
				continue
			}
			cardID := strings.TrimSpace(scard.ID)
			if cardID == "" {
				cardID = newID()
			}
			card, err := domain.NewCard(domain.CardInput{
				ID:          cardID,
				BoardID:     board.ID,
				ColumnID:    column.ID,
				Title:       scard.Title,
				Description: scard.Description,
				Cover:       scard.Cover,
			})
			if err != nil {
				return domain.Board{}, fmt.Errorf("%w: columns[%d].cards[%d]: %w", ErrInvalidSnapshot, i, j, err)
			}
			column.Cards = append(column.Cards, card)
		}
		if sc.CardOrderIDs != nil {
			column.CardOrderIDs = withoutPlaceholderIDs(sc.CardOrderIDs)
		} else {
			column.SyncCardOrder()
		}
		board.Columns = append(board.Columns, column)
	}
	if s.ColumnOrderIDs != nil {
		board.ColumnOrderIDs = append([]string{}, s.ColumnOrderIDs...)
	} else {
		board.SyncColumnOrder()
	}
	return board, nil
}

func withoutPlaceholderIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if domain.IsPlaceholderCardID(id) {
			continue
		}
		out = append(out, id)
	}
	return out
}
