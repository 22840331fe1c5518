package runtime

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Handler applies one write-task op. Type must match WriteTask.Op.
type Handler interface {
	Type() string
	Run(ctx *Context) error
}

var ErrDuplicateOp = errors.New("op already registered")

type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

func (r *Registry) Register(h Handler) error {
	if h == nil {
		return fmt.Errorf("register: nil handler")
	}
	op := h.Type()
	if op == "" {
		return fmt.Errorf("register: handler has an empty op")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[op]; exists {
		return fmt.Errorf("register %s: %w", op, ErrDuplicateOp)
	}
	r.handlers[op] = h
	return nil
}

func (r *Registry) Get(op string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[op]
	return h, ok
}

// Ops lists the registered ops in sorted order.
func (r *Registry) Ops() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.handlers))
	for op := range r.handlers {
		out = append(out, op)
	}
	sort.Strings(out)
	return out
}
