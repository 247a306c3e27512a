package dnd

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRectGeometry(t *testing.T) {
	r := Rect{Left: 2, Top: 3, Width: 10, Height: 4}
	require.Equal(t, 12.0, r.Right())
	require.Equal(t, 7.0, r.Bottom())
	require.True(t, r.Contains(Point{X: 2, Y: 3}))
	require.True(t, r.Contains(Point{X: 12, Y: 7}))
	require.False(t, r.Contains(Point{X: 12.5, Y: 5}))
	require.Equal(t, Rect{Left: 3, Top: 1, Width: 10, Height: 4}, r.Translate(1, -2))
	require.Equal(t, Point{X: 12, Y: 7}, r.Corners()[3])
}

func TestGeometryBelowOver(t *testing.T) {
	require.False(t, Geometry{Active: Rect{Top: 50}}.BelowOver())
	require.False(t, Geometry{Active: Rect{Top: 10}, Over: &Rect{Top: 0, Height: 10}}.BelowOver())
	require.True(t, Geometry{Active: Rect{Top: 11}, Over: &Rect{Top: 0, Height: 10}}.BelowOver())
}

func TestClosestCornersOrdersByMeanCornerDistance(t *testing.T) {
	active := Rect{Left: 100, Top: 0, Width: 20, Height: 40}
	regions := []Region{
		{ID: "far", Rect: Rect{Left: 300, Width: 20, Height: 40}},
		{ID: "near", Rect: Rect{Left: 110, Width: 20, Height: 40}},
		{ID: "mid", Rect: Rect{Left: 0, Width: 20, Height: 40}},
	}
	got := ClosestCorners(active, regions)
	require.Len(t, got, 3)
	require.Equal(t, []string{"near", "mid", "far"}, []string{got[0].ID, got[1].ID, got[2].ID})
	require.InDelta(t, 10.0, got[0].Distance, 1e-9)
}

func TestClosestCornersTiesKeepRegionOrder(t *testing.T) {
	active := Rect{Left: 50, Width: 10, Height: 10}
	got := ClosestCorners(active, []Region{
		{ID: "left", Rect: Rect{Left: 40, Width: 10, Height: 10}},
		{ID: "right", Rect: Rect{Left: 60, Width: 10, Height: 10}},
	})
	id, ok := FirstCollision(got)
	require.True(t, ok)
	require.Equal(t, "left", id)
}

func TestPointerWithinTiesKeepRegionOrder(t *testing.T) {
	got := PointerWithin(Point{X: 5, Y: 10}, []Region{
		{ID: "upper", Rect: Rect{Width: 10, Height: 10}},
		{ID: "lower", Rect: Rect{Top: 10, Width: 10, Height: 10}},
		{ID: "column", Rect: Rect{Width: 10, Height: 40}},
	})
	require.Len(t, got, 3)
	require.Equal(t, got[0].Distance, got[1].Distance)
	require.Equal(t, "upper", got[0].ID)
	require.Equal(t, "lower", got[1].ID)
	require.Equal(t, "column", got[2].ID)
}

func TestPointerWithinReturnsContainingRegionsNearestFirst(t *testing.T) {
	regions := []Region{
		{ID: "column", Rect: Rect{Left: 0, Top: 0, Width: 30, Height: 100}},
		{ID: "card", Rect: Rect{Left: 2, Top: 10, Width: 26, Height: 5}},
		{ID: "elsewhere", Rect: Rect{Left: 40, Top: 0, Width: 30, Height: 100}},
	}
	got := PointerWithin(Point{X: 10, Y: 12}, regions)
	require.Len(t, got, 2)
	require.Equal(t, "card", got[0].ID)
	require.Equal(t, "column", got[1].ID)

	require.Empty(t, PointerWithin(Point{X: 35, Y: 5}, regions))
	_, ok := FirstCollision(nil)
	require.False(t, ok)
}

// boardRegions lays out todo [a, b] and done [c] plus an empty column.
func boardRegions() []Region {
	return []Region{
		{ID: "todo", Rect: Rect{Left: 0, Top: 0, Width: 30, Height: 100}},
		{ID: "a", Rect: Rect{Left: 1, Top: 2, Width: 28, Height: 3}},
		{ID: "b", Rect: Rect{Left: 1, Top: 5, Width: 28, Height: 3}},
		{ID: "done", Rect: Rect{Left: 30, Top: 0, Width: 30, Height: 100}},
		{ID: "c", Rect: Rect{Left: 31, Top: 2, Width: 28, Height: 3}},
	}
}

func TestResolveCollisionIdleResolvesNothing(t *testing.T) {
	e := newTestEngine(t, newTestColumn(t, "todo", "a"))
	_, ok := e.ResolveCollision(CollisionFrame{Pointer: &Point{X: 1, Y: 1}, Regions: boardRegions()})
	require.False(t, ok)
}

func TestResolveCollisionColumnDragUsesClosestColumn(t *testing.T) {
	e := newTestEngine(t, newTestColumn(t, "todo", "a", "b"), newTestColumn(t, "done", "c"))
	e.HandleDragStart(DragStart{Active: columnSubject("todo")})

	id, ok := e.ResolveCollision(CollisionFrame{
		Pointer: &Point{X: 40, Y: 3},
		Active:  Rect{Left: 26, Top: 0, Width: 30, Height: 100},
		Regions: boardRegions(),
	})
	require.True(t, ok)
	require.Equal(t, "done", id, "card regions are ignored for column drags")
}

func TestResolveCollisionCardDragPrefersContainedCard(t *testing.T) {
	e := newTestEngine(t, newTestColumn(t, "todo", "a", "b"), newTestColumn(t, "done", "c"))
	e.HandleDragStart(DragStart{Active: cardSubject("a", "todo")})

	id, ok := e.ResolveCollision(CollisionFrame{
		Pointer: &Point{X: 40, Y: 3},
		Active:  Rect{Left: 31, Top: 2, Width: 28, Height: 3},
		Regions: boardRegions(),
	})
	require.True(t, ok)
	require.Equal(t, "c", id)
	require.Equal(t, "c", e.Session().LastOverID)
}

func TestResolveCollisionCardOverColumnBodyNarrowsToCards(t *testing.T) {
	e := newTestEngine(t, newTestColumn(t, "todo", "a", "b"), newTestColumn(t, "done", "c"))
	e.HandleDragStart(DragStart{Active: cardSubject("c", "done")})

	id, ok := e.ResolveCollision(CollisionFrame{
		Pointer: &Point{X: 10, Y: 60},
		Active:  Rect{Left: 1, Top: 58, Width: 28, Height: 3},
		Regions: boardRegions(),
	})
	require.True(t, ok)
	require.Equal(t, "b", id, "nearest card of the hovered column wins")
}

func TestResolveCollisionColumnWithoutCardRegionsKeepsColumn(t *testing.T) {
	e := newTestEngine(t, newTestColumn(t, "todo", "a"), newTestColumn(t, "done", "c"))
	e.HandleDragStart(DragStart{Active: cardSubject("c", "done")})

	id, ok := e.ResolveCollision(CollisionFrame{
		Pointer: &Point{X: 10, Y: 60},
		Regions: []Region{{ID: "todo", Rect: Rect{Width: 30, Height: 100}}},
	})
	require.True(t, ok)
	require.Equal(t, "todo", id)
}

func TestResolveCollisionFallsBackToLastTarget(t *testing.T) {
	e := newTestEngine(t, newTestColumn(t, "todo", "a", "b"), newTestColumn(t, "done", "c"))
	e.HandleDragStart(DragStart{Active: cardSubject("a", "todo")})

	_, ok := e.ResolveCollision(CollisionFrame{Pointer: &Point{X: 500, Y: 500}, Regions: boardRegions()})
	require.False(t, ok, "no previous target yet")

	_, ok = e.ResolveCollision(CollisionFrame{Pointer: &Point{X: 10, Y: 6}, Regions: boardRegions()})
	require.True(t, ok)

	id, ok := e.ResolveCollision(CollisionFrame{Pointer: &Point{X: 500, Y: 500}, Regions: boardRegions()})
	require.True(t, ok)
	require.Equal(t, "b", id)

	id, ok = e.ResolveCollision(CollisionFrame{Regions: boardRegions()})
	require.True(t, ok)
	require.Equal(t, "b", id, "a missing pointer behaves like no containment")
}

func TestResolveCollisionLastTargetIsPerEngine(t *testing.T) {
	first := newTestEngine(t, newTestColumn(t, "todo", "a", "b"))
	second := newTestEngine(t, newTestColumn(t, "todo", "a", "b"))
	first.HandleDragStart(DragStart{Active: cardSubject("a", "todo")})
	second.HandleDragStart(DragStart{Active: cardSubject("a", "todo")})

	_, ok := first.ResolveCollision(CollisionFrame{Pointer: &Point{X: 10, Y: 6}, Regions: boardRegions()})
	require.True(t, ok)
	_, ok = second.ResolveCollision(CollisionFrame{Pointer: &Point{X: 500, Y: 500}, Regions: boardRegions()})
	require.False(t, ok)
}
