package rooms

import (
	"errors"
	"fmt"
	"strings"

	"github.com/corvino/roomboard/internal/protocol"
)

// ErrUnknownRoom is returned when a room id is not in the configured set.
var ErrUnknownRoom = errors.New("unknown room")

// ConfigurationError reports an unusable room set at startup.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string { return "room configuration: " + e.Reason }

// Entry is one room and its current status.
type Entry struct {
	Room   string
	Status protocol.Status
}

// Registry maps a closed, ordered set of room ids to their current status.
// It is not safe for concurrent use; the hub serializes all access.
type Registry struct {
	order    []string
	statuses map[string]protocol.Status
}

// New builds a registry with every id set to unset. The set must be
// non-empty and free of duplicates and blank ids.
func New(ids []string) (*Registry, error) {
	if len(ids) == 0 {
		return nil, &ConfigurationError{Reason: "no rooms configured"}
	}
	r := &Registry{
		order:    make([]string, 0, len(ids)),
		statuses: make(map[string]protocol.Status, len(ids)),
	}
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			return nil, &ConfigurationError{Reason: "blank room id"}
		}
		if _, dup := r.statuses[id]; dup {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("duplicate room id %q", id)}
		}
		r.order = append(r.order, id)
		r.statuses[id] = protocol.StatusUnset
	}
	return r, nil
}

// Has reports whether id is configured.
func (r *Registry) Has(id string) bool {
	_, ok := r.statuses[id]
	return ok
}

// Get returns the current status of id.
func (r *Registry) Get(id string) (protocol.Status, error) {
	s, ok := r.statuses[id]
	if !ok {
		return protocol.StatusUnset, fmt.Errorf("get %q: %w", id, ErrUnknownRoom)
	}
	return s, nil
}

// All returns a copy of every room in configuration order.
func (r *Registry) All() []Entry {
	out := make([]Entry, len(r.order))
	for i, id := range r.order {
		out[i] = Entry{Room: id, Status: r.statuses[id]}
	}
	return out
}

// Set overwrites the status of id and returns the accepted status.
// Any status may follow any other.
func (r *Registry) Set(id string, status protocol.Status) (protocol.Status, error) {
	if _, ok := r.statuses[id]; !ok {
		return protocol.StatusUnset, fmt.Errorf("set %q: %w", id, ErrUnknownRoom)
	}
	r.statuses[id] = status
	return status, nil
}

// IDs returns the configured room ids in order.
func (r *Registry) IDs() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of configured rooms.
func (r *Registry) Len() int { return len(r.order) }
