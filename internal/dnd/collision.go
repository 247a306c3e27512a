package dnd

import (
	"cmp"
	"slices"
)

// Collision is one candidate target together with its sort distance.
type Collision struct {
	ID       string
	Distance float64
}

// CollisionFrame is the input of one collision resolution pass.
type CollisionFrame struct {
	// Pointer is the current pointer coordinate, nil when unknown.
	Pointer *Point
	// Active is the dragged item's translated rect.
	Active Rect
	// Regions lists every droppable region on screen, columns and cards alike.
	Regions []Region
}

// ClosestCorners ranks regions by the mean distance between their corners and the
// corresponding corners of active. Ties keep region order.
func ClosestCorners(active Rect, regions []Region) []Collision {
	corners := active.Corners()
	out := make([]Collision, 0, len(regions))
	for _, region := range regions {
		out = append(out, Collision{
			ID:       region.ID,
			Distance: meanCornerDistance(region.Rect, corners),
		})
	}
	sortCollisions(out)
	return out
}

// PointerWithin returns the regions containing pointer, nearest first.
func PointerWithin(pointer Point, regions []Region) []Collision {
	at := [4]Point{pointer, pointer, pointer, pointer}
	out := make([]Collision, 0)
	for _, region := range regions {
		if !region.Rect.Contains(pointer) {
			continue
		}
		out = append(out, Collision{
			ID:       region.ID,
			Distance: meanCornerDistance(region.Rect, at),
		})
	}
	sortCollisions(out)
	return out
}

// FirstCollision returns the id of the best candidate.
func FirstCollision(collisions []Collision) (string, bool) {
	if len(collisions) == 0 {
		return "", false
	}
	return collisions[0].ID, true
}

func meanCornerDistance(r Rect, targets [4]Point) float64 {
	var total float64
	for i, corner := range r.Corners() {
		total += distance(corner, targets[i])
	}
	return total / 4
}

func sortCollisions(collisions []Collision) {
	slices.SortStableFunc(collisions, func(a, b Collision) int {
		return cmp.Compare(a.Distance, b.Distance)
	})
}

// ResolveCollision picks the single target for the current frame and records it as
// the session's last resolved target. It returns false when nothing resolves.
func (e *Engine) ResolveCollision(frame CollisionFrame) (string, bool) {
	switch e.session.Item.Kind {
	case KindColumn:
		columns := slices.DeleteFunc(slices.Clone(frame.Regions), func(r Region) bool {
			return e.columnIndex(r.ID) < 0
		})
		overID, ok := FirstCollision(ClosestCorners(frame.Active, columns))
		if ok {
			e.session.LastOverID = overID
		}
		return overID, ok
	case KindCard:
		return e.resolveCardCollision(frame)
	default:
		return "", false
	}
}

func (e *Engine) resolveCardCollision(frame CollisionFrame) (string, bool) {
	var contained []Collision
	if frame.Pointer != nil {
		contained = PointerWithin(*frame.Pointer, frame.Regions)
	}
	overID, ok := FirstCollision(contained)
	if !ok {
		if e.session.LastOverID == "" {
			return "", false
		}
		return e.session.LastOverID, true
	}

	if idx := e.columnIndex(overID); idx >= 0 {
		column := e.columns[idx]
		cards := slices.DeleteFunc(slices.Clone(frame.Regions), func(r Region) bool {
			return r.ID == overID || !slices.Contains(column.CardOrderIDs, r.ID)
		})
		if cardID, found := FirstCollision(ClosestCorners(frame.Active, cards)); found {
			overID = cardID
		}
	}

	e.session.LastOverID = overID
	return overID, true
}
