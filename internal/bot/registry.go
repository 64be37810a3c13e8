package bot

import "context"

// Registry manages bot handlers and dispatches messages in registration
// order. Order matters: earlier handlers shadow later ones, and the
// catch-all lookup handler must be registered last.
type Registry struct {
	handlers []Handler
}

// NewRegistry creates a new handler registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make([]Handler, 0),
	}
}

// Register adds a handler to the registry.
func (r *Registry) Register(h Handler) {
	r.handlers = append(r.handlers, h)
}

// Dispatch routes the message to the first handler whose CanHandle returns
// true. Returns the reply and the matching handler's name. The first match
// is final: an empty reply from a matching handler is returned as-is so the
// caller can apply its unmatched-message policy.
func (r *Registry) Dispatch(ctx context.Context, msg IncomingMessage) (string, string) {
	for _, h := range r.handlers {
		if h.CanHandle(msg.Text) {
			return h.Handle(ctx, msg), h.Name()
		}
	}
	return "", ""
}

// Get returns a handler by name, or nil if not registered.
func (r *Registry) Get(name string) Handler {
	for _, h := range r.handlers {
		if h.Name() == name {
			return h
		}
	}
	return nil
}
