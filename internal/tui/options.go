package tui

import "github.com/evanschultz/kanboard/internal/app"

type Option func(*Model)

// DefaultActivationDistance is how far, in cells, a press must travel to start a drag.
const DefaultActivationDistance = 3

func WithLayout(cfg LayoutConfig) Option {
	return func(m *Model) {
		m.layoutCfg = cfg.normalized()
	}
}

// WithActivationDistance sets the drag activation distance. Zero starts a drag on press.
func WithActivationDistance(cells int) Option {
	return func(m *Model) {
		if cells >= 0 {
			m.activation = cells
		}
	}
}

func WithKeyConfig(cfg KeyConfig) Option {
	return func(m *Model) {
		m.keys.applyConfig(cfg)
	}
}

func WithLogger(logger app.Logger) Option {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
			m.viewOpts = append(m.viewOpts, app.WithLogger(logger))
		}
	}
}

func WithBoardViewOptions(opts ...app.BoardViewOption) Option {
	return func(m *Model) {
		m.viewOpts = append(m.viewOpts, opts...)
	}
}
