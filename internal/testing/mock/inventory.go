package mock

import (
	"context"
	"sync"
	"time"

	"fleetgear/internal/inventory"
)

// Node is an in-memory inventory.Node recording every call made to it.
type Node struct {
	name string

	// ReloadErr, SetErr and SaveErr are returned by the matching calls.
	ReloadErr error
	SetErr    error
	SaveErr   error

	// SaveDelay is slept inside Save, to widen concurrency windows in tests.
	SaveDelay time.Duration

	// SavePanic, when set, makes Save panic with it.
	SavePanic interface{}

	mu         sync.Mutex
	reloads    int
	saves      int
	pending    map[string]interface{}
	attributes map[string]interface{}
	sets       []AttributeSet
}

// AttributeSet records one SetAttribute call.
type AttributeSet struct {
	Key   string
	Value interface{}
}

// NewNode creates a node called name.
func NewNode(name string) *Node {
	return &Node{
		name:       name,
		pending:    map[string]interface{}{},
		attributes: map[string]interface{}{},
	}
}

func (n *Node) Name() string {
	return n.name
}

func (n *Node) Reload(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reloads++
	if n.ReloadErr != nil {
		return n.ReloadErr
	}
	n.pending = map[string]interface{}{}
	for k, v := range n.attributes {
		n.pending[k] = v
	}
	return nil
}

func (n *Node) SetAttribute(key string, value interface{}) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sets = append(n.sets, AttributeSet{Key: key, Value: value})
	if n.SetErr != nil {
		return n.SetErr
	}
	n.pending[key] = value
	return nil
}

func (n *Node) Save(ctx context.Context) error {
	if n.SaveDelay > 0 {
		time.Sleep(n.SaveDelay)
	}
	if n.SavePanic != nil {
		panic(n.SavePanic)
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.saves++
	if n.SaveErr != nil {
		return n.SaveErr
	}
	for k, v := range n.pending {
		n.attributes[k] = v
	}
	return nil
}

// Sets returns every SetAttribute call in order.
func (n *Node) Sets() []AttributeSet {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]AttributeSet(nil), n.sets...)
}

// Saved returns the persisted value of key.
func (n *Node) Saved(key string) (interface{}, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	v, ok := n.attributes[key]
	return v, ok
}

// Reloads returns how often Reload was called.
func (n *Node) Reloads() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.reloads
}

// Saves returns how often Save was called.
func (n *Node) Saves() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.saves
}

// Inventory is an inventory.Inventory with fixed answers per
// (selector, environment) pair.
type Inventory struct {
	// Err is returned by every Resolve call when set.
	Err error

	mu      sync.Mutex
	nodes   map[string][]inventory.Node
	resolve int
}

// NewInventory creates an empty inventory.
func NewInventory() *Inventory {
	return &Inventory{nodes: make(map[string][]inventory.Node)}
}

// Set makes Resolve(selector, environment) return nodes.
func (i *Inventory) Set(selector, environment string, nodes ...*Node) {
	i.mu.Lock()
	defer i.mu.Unlock()
	list := make([]inventory.Node, 0, len(nodes))
	for _, n := range nodes {
		list = append(list, n)
	}
	i.nodes[selector+"@"+environment] = list
}

func (i *Inventory) Resolve(ctx context.Context, selector, environment string) ([]inventory.Node, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.resolve++
	if i.Err != nil {
		return nil, i.Err
	}
	return append([]inventory.Node(nil), i.nodes[selector+"@"+environment]...), nil
}

// ResolveCalls returns how often Resolve was called.
func (i *Inventory) ResolveCalls() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.resolve
}
