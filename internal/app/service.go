package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/evanschultz/kanboard/internal/domain"
)

// IDGenerator returns unique identifiers for new entities.
type IDGenerator func() string

// Service loads, imports and exports boards through a BoardStore.
type Service struct {
	repo  BoardStore
	idGen IDGenerator
}

// NewService constructs a new value for this package. A nil repo yields a service
// that can only decode snapshots.
func NewService(repo BoardStore, idGen IDGenerator) *Service {
	if idGen == nil {
		idGen = func() string { return "" }
	}
	return &Service{repo: repo, idGen: idGen}
}

// LoadBoard returns the board with id. An empty id selects the first stored board.
func (s *Service) LoadBoard(ctx context.Context, id string) (domain.Board, error) {
	if s.repo == nil {
		return domain.Board{}, ErrNoBoardSource
	}
	id = strings.TrimSpace(id)
	if id != "" {
		board, err := s.repo.GetBoard(ctx, id)
		if err != nil {
			return domain.Board{}, fmt.Errorf("load board %q: %w", id, err)
		}
		return board, nil
	}
	boards, err := s.repo.ListBoards(ctx)
	if err != nil {
		return domain.Board{}, fmt.Errorf("list boards: %w", err)
	}
	if len(boards) == 0 {
		return domain.Board{}, ErrNotFound
	}
	return boards[0], nil
}

// ListBoards lists stored boards.
func (s *Service) ListBoards(ctx context.Context) ([]domain.Board, error) {
	if s.repo == nil {
		return nil, ErrNoBoardSource
	}
	return s.repo.ListBoards(ctx)
}

// BoardFromSnapshot converts snap into a validated board, filling missing ids.
func (s *Service) BoardFromSnapshot(snap BoardSnapshot) (domain.Board, error) {
	board, err := snap.ToBoard(s.idGen)
	if err != nil {
		return domain.Board{}, err
	}
	if err := board.Validate(); err != nil {
		return domain.Board{}, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	return board, nil
}

// ImportSnapshot validates snap and stores it as a whole board.
func (s *Service) ImportSnapshot(ctx context.Context, snap BoardSnapshot) (domain.Board, error) {
	if s.repo == nil {
		return domain.Board{}, ErrNoBoardSource
	}
	board, err := s.BoardFromSnapshot(snap)
	if err != nil {
		return domain.Board{}, err
	}
	if err := s.repo.SaveBoard(ctx, board); err != nil {
		return domain.Board{}, fmt.Errorf("save board %q: %w", board.ID, err)
	}
	return board, nil
}

// ExportSnapshot returns the stored board with id as a snapshot.
func (s *Service) ExportSnapshot(ctx context.Context, id string) (BoardSnapshot, error) {
	board, err := s.LoadBoard(ctx, id)
	if err != nil {
		return BoardSnapshot{}, err
	}
	return SnapshotFromBoard(board), nil
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
