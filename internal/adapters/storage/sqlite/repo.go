package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/evanschultz/kanboard/internal/app"
	"github.com/evanschultz/kanboard/internal/domain"
	_ "modernc.org/sqlite"
)

// driverName defines a package constant value.
const driverName = "sqlite"

// Repository stores whole boards with their columns and cards.
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens the requested operation.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return newRepository(db)
}

// OpenInMemory opens in memory.
func OpenInMemory() (*Repository, error) {
	db, err := sql.Open(driverName, "file::memory:?cache=shared")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	return newRepository(db)
}

func newRepository(db *sql.DB) (*Repository, error) {
	repo := &Repository{db: db, now: time.Now}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the requested operation.
func (r *Repository) Close() error {
	return r.db.Close()
}

// migrate handles migrate.
func (r *Repository) migrate(ctx context.Context) error {
	stmts := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS boards (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			column_order_json TEXT NOT NULL DEFAULT '[]',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS board_columns (
			id TEXT PRIMARY KEY,
			board_id TEXT NOT NULL,
			title TEXT NOT NULL,
			card_order_json TEXT NOT NULL DEFAULT '[]',
			position INTEGER NOT NULL,
			FOREIGN KEY(board_id) REFERENCES boards(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS cards (
			id TEXT PRIMARY KEY,
			board_id TEXT NOT NULL,
			column_id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			cover TEXT NOT NULL DEFAULT '',
			position INTEGER NOT NULL,
			FOREIGN KEY(board_id) REFERENCES boards(id) ON DELETE CASCADE,
			FOREIGN KEY(column_id) REFERENCES board_columns(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_board_columns_board ON board_columns(board_id, position);`,
		`CREATE INDEX IF NOT EXISTS idx_cards_column ON cards(column_id, position);`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return nil
}

// SaveBoard replaces the stored columns and cards of board in one transaction.
// Placeholder cards are never persisted.
func (r *Repository) SaveBoard(ctx context.Context, board domain.Board) (err error) {
	columnOrderJSON, err := json.Marshal(orderIDs(board.ColumnOrderIDs))
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := ts(r.now())
	_, err = tx.ExecContext(ctx, `
		INSERT INTO boards(id, title, column_order_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			column_order_json = excluded.column_order_json,
			updated_at = excluded.updated_at
	`, board.ID, board.Title, string(columnOrderJSON), now, now)
	if err != nil {
		return fmt.Errorf("upsert board: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM cards WHERE board_id = ?`, board.ID); err != nil {
		return fmt.Errorf("clear cards: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM board_columns WHERE board_id = ?`, board.ID); err != nil {
		return fmt.Errorf("clear columns: %w", err)
	}

	for colPos, column := range board.Columns {
		var cardOrderJSON []byte
		cardOrderJSON, err = json.Marshal(orderIDs(column.CardOrderIDs))
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO board_columns(id, board_id, title, card_order_json, position)
			VALUES (?, ?, ?, ?, ?)
		`, column.ID, board.ID, column.Title, string(cardOrderJSON), colPos)
		if err != nil {
			return fmt.Errorf("insert column %s: %w", column.ID, err)
		}
		for cardPos, card := range column.RealCards() {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO cards(id, board_id, column_id, title, description, cover, position)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`, card.ID, board.ID, column.ID, card.Title, card.Description, card.Cover, cardPos)
			if err != nil {
				return fmt.Errorf("insert card %s: %w", card.ID, err)
			}
		}
	}

	err = tx.Commit()
	return err
}

// GetBoard returns board.
func (r *Repository) GetBoard(ctx context.Context, id string) (domain.Board, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, title, column_order_json
		FROM boards
		WHERE id = ?
	`, id)
	board, err := scanBoard(row)
	if err != nil {
		return domain.Board{}, err
	}

	columns, err := r.listColumns(ctx, board.ID)
	if err != nil {
		return domain.Board{}, err
	}
	cards, err := r.listCards(ctx, board.ID)
	if err != nil {
		return domain.Board{}, err
	}
	for i := range columns {
		columns[i].Cards = cards[columns[i].ID]
	}
	board.Columns = columns
	return board, nil
}

// ListBoards lists boards in creation order.
func (r *Repository) ListBoards(ctx context.Context) ([]domain.Board, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM boards ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	out := make([]domain.Board, 0, len(ids))
	for _, id := range ids {
		board, err := r.GetBoard(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, board)
	}
	return out, nil
}

// listColumns handles list columns.
func (r *Repository) listColumns(ctx context.Context, boardID string) ([]domain.Column, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, board_id, title, card_order_json
		FROM board_columns
		WHERE board_id = ?
		ORDER BY position ASC
	`, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Column{}
	for rows.Next() {
		var (
			c        domain.Column
			orderRaw string
		)
		if err := rows.Scan(&c.ID, &c.BoardID, &c.Title, &orderRaw); err != nil {
			return nil, err
		}
		if c.CardOrderIDs, err = decodeOrder(orderRaw); err != nil {
			return nil, fmt.Errorf("decode column %s card_order_json: %w", c.ID, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// listCards returns the board's cards grouped by column id.
func (r *Repository) listCards(ctx context.Context, boardID string) (map[string][]domain.Card, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, board_id, column_id, title, description, cover
		FROM cards
		WHERE board_id = ?
		ORDER BY column_id ASC, position ASC
	`, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string][]domain.Card{}
	for rows.Next() {
		var c domain.Card
		if err := rows.Scan(&c.ID, &c.BoardID, &c.ColumnID, &c.Title, &c.Description, &c.Cover); err != nil {
			return nil, err
		}
		out[c.ColumnID] = append(out[c.ColumnID], c)
	}
	return out, rows.Err()
}

// scanner represents scanner data used by this package.
type scanner interface {
	Scan(dest ...any) error
}

// scanBoard handles scan board.
func scanBoard(s scanner) (domain.Board, error) {
	var (
		b        domain.Board
		orderRaw string
	)
	if err := s.Scan(&b.ID, &b.Title, &orderRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Board{}, app.ErrNotFound
		}
		return domain.Board{}, err
	}
	order, err := decodeOrder(orderRaw)
	if err != nil {
		return domain.Board{}, fmt.Errorf("decode board column_order_json: %w", err)
	}
	b.ColumnOrderIDs = order
	return b, nil
}

// orderIDs drops placeholder ids and never returns nil.
func orderIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if domain.IsPlaceholderCardID(id) {
			continue
		}
		out = append(out, id)
	}
	return out
}

func decodeOrder(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		raw = "[]"
	}
	out := []string{}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ts handles ts.
func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
