package app

import (
	"context"

	"github.com/evanschultz/kanboard/internal/domain"
)

// BoardSource loads persisted boards. Implementations return ErrNotFound for unknown ids.
type BoardSource interface {
	GetBoard(context.Context, string) (domain.Board, error)
	ListBoards(context.Context) ([]domain.Board, error)
}

// BoardStore is a BoardSource that can also persist whole boards.
type BoardStore interface {
	BoardSource
	SaveBoard(context.Context, domain.Board) error
}

// Logger receives gesture-level diagnostics.
type Logger interface {
	Debug(msg any, keyvals ...any)
	Info(msg any, keyvals ...any)
}
