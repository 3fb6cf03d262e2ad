package job

import (
	"sort"
	"sync"

	"fleetgear/internal/api"
)

// DefaultRegistryCapacity bounds how many tickets a Registry remembers.
const DefaultRegistryCapacity = 256

// Registry keeps the tickets of recent jobs in memory so they can be looked
// up by id. Nothing survives a process restart.
type Registry struct {
	mu       sync.RWMutex
	capacity int
	tickets  map[string]*Ticket
	order    []string
}

// NewRegistry creates a registry remembering up to capacity tickets
// (DefaultRegistryCapacity when capacity <= 0). The oldest tickets are
// forgotten first.
func NewRegistry(capacity int) *Registry {
	if capacity <= 0 {
		capacity = DefaultRegistryCapacity
	}
	return &Registry{
		capacity: capacity,
		tickets:  make(map[string]*Ticket),
	}
}

// Add remembers t.
func (r *Registry) Add(t *Ticket) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tickets[t.ID()]; exists {
		return
	}
	r.tickets[t.ID()] = t
	r.order = append(r.order, t.ID())

	for len(r.order) > r.capacity {
		oldest := r.order[0]
		r.order = r.order[1:]
		delete(r.tickets, oldest)
	}
}

// Get returns the ticket with the given id.
func (r *Registry) Get(id string) (*Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tickets[id]
	if !ok {
		return nil, api.NewJobNotFoundError(id)
	}
	return t, nil
}

// List returns snapshots of all remembered jobs, oldest first.
func (r *Registry) List() []api.TicketInfo {
	r.mu.RLock()
	tickets := make([]*Ticket, 0, len(r.order))
	for _, id := range r.order {
		tickets = append(tickets, r.tickets[id])
	}
	r.mu.RUnlock()

	infos := make([]api.TicketInfo, 0, len(tickets))
	for _, t := range tickets {
		infos = append(infos, t.Info())
	}
	sort.SliceStable(infos, func(i, j int) bool { return infos[i].CreatedAt.Before(infos[j].CreatedAt) })
	return infos
}
