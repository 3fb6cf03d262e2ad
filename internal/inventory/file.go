package inventory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/juju/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/apimachinery/pkg/runtime"
	"sigs.k8s.io/yaml"

	"fleetgear/internal/api"
	"fleetgear/pkg/logging"
)

// NodeRecord is the stored form of one node.
type NodeRecord struct {
	Name        string                 `json:"name"`
	Environment string                 `json:"environment"`
	Labels      map[string]string      `json:"labels,omitempty"`
	Attributes  map[string]interface{} `json:"attributes,omitempty"`
}

type document struct {
	Nodes []NodeRecord `json:"nodes"`
}

// FileInventory is an Inventory backed by a YAML document of node records.
// Group selectors use Kubernetes label-selector syntax and are matched
// against each node's labels, e.g. "role=web,tier in (frontend,edge)".
//
// When created with Load, every Save rewrites the file. Records created
// with New live in memory only.
type FileInventory struct {
	mu    sync.RWMutex
	path  string
	nodes map[string]*NodeRecord
}

// New creates an in-memory inventory from records.
func New(records []NodeRecord) (*FileInventory, error) {
	inv := &FileInventory{nodes: make(map[string]*NodeRecord, len(records))}
	for i := range records {
		rec := records[i]
		if rec.Name == "" {
			return nil, errors.Errorf("node record %d has no name", i)
		}
		if _, exists := inv.nodes[rec.Name]; exists {
			return nil, errors.Errorf("duplicate node %q", rec.Name)
		}
		if rec.Attributes == nil {
			rec.Attributes = map[string]interface{}{}
		}
		inv.nodes[rec.Name] = &rec
	}
	return inv, nil
}

// Load reads an inventory file. Saved node attributes are written back to it.
func Load(path string) (*FileInventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Annotatef(err, "reading inventory %s", path)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Annotatef(err, "parsing inventory %s", path)
	}

	inv, err := New(doc.Nodes)
	if err != nil {
		return nil, errors.Annotatef(err, "inventory %s", path)
	}
	inv.path = path

	logging.Info("Inventory", "Loaded %d nodes from %s", len(inv.nodes), path)
	return inv, nil
}

// Resolve returns the nodes of environment whose labels match selector,
// sorted by name. Each call reads the current records.
func (i *FileInventory) Resolve(ctx context.Context, selector, environment string) ([]Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Trace(err)
	}

	sel, err := labels.Parse(selector)
	if err != nil {
		return nil, errors.Annotatef(err, "invalid node selector %q", selector)
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	var matched []*NodeRecord
	for _, rec := range i.nodes {
		if rec.Environment != environment {
			continue
		}
		if !sel.Matches(labels.Set(rec.Labels)) {
			continue
		}
		matched = append(matched, rec)
	}
	sort.Slice(matched, func(a, b int) bool { return matched[a].Name < matched[b].Name })

	nodes := make([]Node, 0, len(matched))
	for _, rec := range matched {
		nodes = append(nodes, &fileNode{
			inv:   i,
			name:  rec.Name,
			attrs: runtime.DeepCopyJSON(rec.Attributes),
		})
	}

	logging.Debug("Inventory", "Selector %q in %s matched %d nodes", selector, environment, len(nodes))
	return nodes, nil
}

// Attributes returns a copy of the stored attributes of a node.
func (i *FileInventory) Attributes(name string) (map[string]interface{}, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	rec, ok := i.nodes[name]
	if !ok {
		return nil, api.NewNodeNotFoundError(name)
	}
	return runtime.DeepCopyJSON(rec.Attributes), nil
}

// Attribute reads a dotted attribute path of a stored node.
func (i *FileInventory) Attribute(name, key string) (interface{}, bool, error) {
	attrs, err := i.Attributes(name)
	if err != nil {
		return nil, false, err
	}
	return unstructured.NestedFieldNoCopy(attrs, strings.Split(key, ".")...)
}

func (i *FileInventory) store(name string, attrs map[string]interface{}) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	rec, ok := i.nodes[name]
	if !ok {
		return api.NewNodeNotFoundError(name)
	}
	rec.Attributes = runtime.DeepCopyJSON(attrs)

	if i.path == "" {
		return nil
	}
	return errors.Annotatef(i.writeLocked(), "saving node %s", name)
}

// writeLocked rewrites the backing file. Callers hold i.mu.
func (i *FileInventory) writeLocked() error {
	names := make([]string, 0, len(i.nodes))
	for name := range i.nodes {
		names = append(names, name)
	}
	sort.Strings(names)

	doc := document{Nodes: make([]NodeRecord, 0, len(names))}
	for _, name := range names {
		doc.Nodes = append(doc.Nodes, *i.nodes[name])
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return errors.Trace(err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(i.path), ".inventory-*.yaml")
	if err != nil {
		return errors.Trace(err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Trace(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Trace(err)
	}
	return errors.Trace(os.Rename(tmp.Name(), i.path))
}

// fileNode is a working copy of one node record. Mutations stay local
// until Save.
type fileNode struct {
	mu    sync.Mutex
	inv   *FileInventory
	name  string
	attrs map[string]interface{}
}

func (n *fileNode) Name() string {
	return n.name
}

func (n *fileNode) Reload(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.Trace(err)
	}
	attrs, err := n.inv.Attributes(n.name)
	if err != nil {
		return errors.Trace(err)
	}
	if attrs == nil {
		attrs = map[string]interface{}{}
	}

	n.mu.Lock()
	n.attrs = attrs
	n.mu.Unlock()
	return nil
}

func (n *fileNode) SetAttribute(key string, value interface{}) error {
	fields := strings.Split(key, ".")
	for _, f := range fields {
		if f == "" {
			return errors.NotValidf("attribute key %q", key)
		}
	}

	v, err := jsonValue(value)
	if err != nil {
		return errors.Annotatef(err, "attribute %s", key)
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.attrs == nil {
		n.attrs = map[string]interface{}{}
	}
	if err := unstructured.SetNestedField(n.attrs, v, fields...); err != nil {
		return errors.Annotatef(err, "setting %s on %s", key, n.name)
	}
	return nil
}

func (n *fileNode) Save(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.Trace(err)
	}

	n.mu.Lock()
	attrs := n.attrs
	n.mu.Unlock()

	return n.inv.store(n.name, attrs)
}

// jsonValue converts scalars into the types the unstructured helpers accept.
func jsonValue(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case nil, string, bool, int64, float64:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case float32:
		return float64(v), nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return nil, errors.NotSupportedf("value of type %T", value)
	}
}
