// Package confirm implements the two-phase protocol for destructive
// operations: the caller requests a pending action described by a
// title and message, receives a token, and the state change only
// happens when that token is committed. Cancelling (or never
// committing) discards the pending action with no side effects.
package confirm

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

var ErrUnknownToken = errors.New("unknown confirmation token")

// Action is an explicit pending-action value. Kind and TargetID tell
// the committer what to apply; apply carries the prepared mutation.
type Action struct {
	Token    string `json:"token"`
	Title    string `json:"title"`
	Message  string `json:"message"`
	Danger   bool   `json:"danger"`
	Kind     string `json:"kind"`
	TargetID string `json:"targetId"`

	apply func() error
}

type Registry struct {
	mu      sync.Mutex
	pending map[string]Action
}

func NewRegistry() *Registry {
	return &Registry{pending: make(map[string]Action)}
}

// Request registers a pending action and returns it with a fresh
// token. Nothing is mutated until Commit.
func (r *Registry) Request(title, message string, danger bool, kind, targetID string, apply func() error) Action {
	a := Action{
		Token:    uuid.New().String(),
		Title:    title,
		Message:  message,
		Danger:   danger,
		Kind:     kind,
		TargetID: targetID,
		apply:    apply,
	}

	r.mu.Lock()
	r.pending[a.Token] = a
	r.mu.Unlock()
	return a
}

// Commit applies the pending action and removes it from the registry.
func (r *Registry) Commit(token string) error {
	r.mu.Lock()
	a, ok := r.pending[token]
	if ok {
		delete(r.pending, token)
	}
	r.mu.Unlock()

	if !ok {
		return ErrUnknownToken
	}
	return a.apply()
}

// Cancel discards the pending action without applying it.
func (r *Registry) Cancel(token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.pending[token]; !ok {
		return ErrUnknownToken
	}
	delete(r.pending, token)
	return nil
}

// Pending lists the not-yet-committed actions.
func (r *Registry) Pending() []Action {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Action, 0, len(r.pending))
	for _, a := range r.pending {
		out = append(out, a)
	}
	return out
}
