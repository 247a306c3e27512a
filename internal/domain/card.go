package domain

import "strings"

// placeholderSuffix is appended to a column id to build its placeholder card id.
const placeholderSuffix = "-placeholder-card"

// Card represents one unit of work owned by exactly one column.
type Card struct {
	ID          string
	BoardID     string
	ColumnID    string
	Title       string
	Description string
	Cover       string
	// Placeholder marks a synthetic card that keeps an empty column droppable.
	Placeholder bool
}

// CardInput holds the values accepted by NewCard.
type CardInput struct {
	ID          string
	BoardID     string
	ColumnID    string
	Title       string
	Description string
	Cover       string
}

// NewCard constructs a real (non-placeholder) card.
func NewCard(in CardInput) (Card, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.BoardID = strings.TrimSpace(in.BoardID)
	in.ColumnID = strings.TrimSpace(in.ColumnID)
	in.Title = strings.TrimSpace(in.Title)

	if in.ID == "" || in.BoardID == "" {
		return Card{}, ErrInvalidID
	}
	if in.ColumnID == "" {
		return Card{}, ErrInvalidColumnID
	}
	if in.Title == "" {
		return Card{}, ErrInvalidTitle
	}
	if IsPlaceholderCardID(in.ID) {
		return Card{}, ErrInvalidID
	}

	return Card{
		ID:          in.ID,
		BoardID:     in.BoardID,
		ColumnID:    in.ColumnID,
		Title:       in.Title,
		Description: strings.TrimSpace(in.Description),
		Cover:       strings.TrimSpace(in.Cover),
	}, nil
}

// PlaceholderCardID returns the placeholder id reserved for one column.
func PlaceholderCardID(columnID string) string {
	return columnID + placeholderSuffix
}

// IsPlaceholderCardID reports whether id uses the reserved placeholder shape.
func IsPlaceholderCardID(id string) bool {
	return strings.HasSuffix(id, placeholderSuffix)
}

// NewPlaceholderCard synthesizes the placeholder for an otherwise empty column.
func NewPlaceholderCard(column Column) Card {
	return Card{
		ID:          PlaceholderCardID(column.ID),
		BoardID:     column.BoardID,
		ColumnID:    column.ID,
		Placeholder: true,
	}
}

// MovedTo returns a copy of the card owned by columnID.
func (c Card) MovedTo(columnID string) Card {
	c.ColumnID = columnID
	return c
}
