package app

import (
	"github.com/evanschultz/kanboard/internal/dnd"
	"github.com/evanschultz/kanboard/internal/domain"
)

// RenderState is the read-only view of the board handed to the renderer.
type RenderState struct {
	BoardID string
	Title   string
	Columns []domain.Column
	// Active is the dragged item, nil when no gesture is in progress.
	Active *dnd.DraggedItem
}

// RenderFunc draws one RenderState. It must not retain or mutate the columns.
type RenderFunc func(RenderState)

// BoardViewOption configures a BoardView.
type BoardViewOption func(*BoardView)

// WithLogger routes gesture diagnostics to logger.
func WithLogger(logger Logger) BoardViewOption {
	return func(v *BoardView) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// WithEngineOptions forwards options to the underlying engine.
func WithEngineOptions(opts ...dnd.Option) BoardViewOption {
	return func(v *BoardView) {
		v.engineOpts = append(v.engineOpts, opts...)
	}
}

// BoardView connects a board source, the drag-sensing collaborator and a renderer
// to one reorder engine.
type BoardView struct {
	engine     *dnd.Engine
	engineOpts []dnd.Option
	render     RenderFunc
	logger     Logger
}

// NewBoardView constructs a view with an empty board. A nil render is allowed.
func NewBoardView(render RenderFunc, opts ...BoardViewOption) *BoardView {
	v := &BoardView{render: render}
	for _, opt := range opts {
		opt(v)
	}
	v.engine = dnd.NewEngine(v.engineOpts...)
	return v
}

// Receive replaces the working board and renders it.
func (v *BoardView) Receive(board domain.Board) {
	v.engine.Load(board)
	v.debug("board received", "board", board.ID, "columns", len(board.Columns))
	v.emit()
}

// State returns the current render state.
func (v *BoardView) State() RenderState {
	board := v.engine.Board()
	return RenderState{
		BoardID: board.ID,
		Title:   board.Title,
		Columns: board.Columns,
		Active:  v.engine.Active(),
	}
}

// Board returns the current ordering as a board value.
func (v *BoardView) Board() domain.Board {
	return v.engine.Board()
}

// Dragging reports whether a gesture is in progress.
func (v *BoardView) Dragging() bool {
	return v.engine.Session().Active()
}

// DragStart begins a gesture for active.
func (v *BoardView) DragStart(active dnd.Subject) dnd.Outcome {
	out := v.engine.HandleDragStart(dnd.DragStart{Active: active})
	if out.Op == dnd.OpNone {
		v.debug("drag start ignored", "active", active.ID)
		return out
	}
	session := v.engine.Session()
	v.debug("drag start", "gesture", session.GestureID, "kind", session.Item.Kind, "active", active.ID)
	v.emit()
	return out
}

// DragOver resolves the collision for frame and applies the resulting over event.
// It returns the resolved target, empty when nothing was hit.
func (v *BoardView) DragOver(active dnd.Subject, frame dnd.CollisionFrame) (string, dnd.Outcome) {
	overID, ok := v.engine.ResolveCollision(frame)
	if !ok {
		return "", dnd.Outcome{Op: dnd.OpNone}
	}
	out := v.Over(dnd.DragOver{
		Active:   active,
		OverID:   overID,
		Geometry: geometryFor(frame, overID),
	})
	return overID, out
}

// Over applies a drag-over event whose target was resolved by the caller.
func (v *BoardView) Over(ev dnd.DragOver) dnd.Outcome {
	out := v.engine.HandleDragOver(ev)
	if out.Changed {
		v.debug("drag over", "gesture", v.engine.Session().GestureID, "active", ev.Active.ID, "over", ev.OverID, "op", out.Op)
		v.emit()
	}
	return out
}

// DragEnd resolves the final collision for frame and commits the gesture.
func (v *BoardView) DragEnd(active dnd.Subject, frame dnd.CollisionFrame) dnd.Outcome {
	overID, ok := v.engine.ResolveCollision(frame)
	ev := dnd.DragEnd{Active: active}
	if ok {
		ev.OverID = overID
		ev.Geometry = geometryFor(frame, overID)
	}
	return v.End(ev)
}

// Cancel ends the current gesture without a target.
func (v *BoardView) Cancel() dnd.Outcome {
	item := v.engine.Active()
	if item == nil {
		return dnd.Outcome{Op: dnd.OpNone}
	}
	return v.End(dnd.DragEnd{Active: dnd.Subject{ID: item.ID, ColumnID: item.OriginColumnID}})
}

// End applies a drag-end event whose target was resolved by the caller.
func (v *BoardView) End(ev dnd.DragEnd) dnd.Outcome {
	session := v.engine.Session()
	out := v.engine.HandleDragEnd(ev)
	if !session.Active() {
		return out
	}
	v.debug("drag end", "gesture", session.GestureID, "kind", session.Item.Kind, "active", ev.Active.ID, "over", ev.OverID, "op", out.Op)
	v.emit()
	return out
}

func (v *BoardView) emit() {
	if v.render == nil {
		return
	}
	v.render(v.State())
}

func (v *BoardView) debug(msg string, keyvals ...any) {
	if v.logger == nil {
		return
	}
	v.logger.Debug(msg, keyvals...)
}

// geometryFor builds the event geometry for a resolved target in frame.
func geometryFor(frame dnd.CollisionFrame, overID string) dnd.Geometry {
	geo := dnd.Geometry{Pointer: frame.Pointer, Active: frame.Active}
	for _, region := range frame.Regions {
		if region.ID == overID {
			rect := region.Rect
			geo.Over = &rect
			break
		}
	}
	return geo
}
