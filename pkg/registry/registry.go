package registry

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/scobi84/chardev-go/pkg/device"
)

// FirstMajor is the first major number handed out by a NodeRegistry.
// Dynamic allocation counts upward from here.
const FirstMajor = 240

// Registry errors.
var (
	// ErrDuplicateNode indicates a node with the same name and tag is
	// already registered.
	ErrDuplicateNode = errors.New("node already registered")

	// ErrNodeNotFound indicates no node with the given name is registered.
	ErrNodeNotFound = errors.New("node not found")
)

// Node is a registered device node.
type Node struct {
	// Name is the device name.
	Name string

	// Tag is the device instance tag.
	Tag int

	// Major is the assigned major number.
	Major int

	// Minor is the assigned minor number.
	Minor int

	// Path is the node path, "/dev/<name>".
	Path string

	// CreatedAt is when the node was registered.
	CreatedAt time.Time

	// openCount is the current number of holders (0 or 1).
	openCount atomic.Uint64

	// totalOpens counts successful opens over the node's lifetime.
	totalOpens atomic.Uint64

	registry *NodeRegistry
}

// OpenCount returns the current number of holders.
func (n *Node) OpenCount() uint64 { return n.openCount.Load() }

// TotalOpens returns the number of successful opens since registration.
func (n *Node) TotalOpens() uint64 { return n.totalOpens.Load() }

// OnOpened records a successful device open.
func (n *Node) OnOpened(openCount uint64) {
	n.openCount.Store(openCount)
	n.totalOpens.Add(1)
	n.registry.notify(n)
}

// OnClosed records a device close.
func (n *Node) OnClosed(openCount uint64) {
	n.openCount.Store(openCount)
	n.registry.notify(n)
}

// Node implements the device registry callback interface.
var _ device.Registry = (*Node)(nil)

// NodeRegistry assigns device numbers and tracks registered nodes.
type NodeRegistry struct {
	mu        sync.Mutex
	nodes     map[string]*Node // keyed by name
	nextMajor int

	// onChange is called after a node's open counts change (optional).
	onChange func(*Node)
}

// NewNodeRegistry creates an empty registry.
func NewNodeRegistry() *NodeRegistry {
	return &NodeRegistry{
		nodes:     make(map[string]*Node),
		nextMajor: FirstMajor,
	}
}

// OnChange sets a callback invoked whenever a node's open counts change,
// e.g. to refresh mDNS TXT records.
func (r *NodeRegistry) OnChange(fn func(*Node)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onChange = fn
}

// Register creates a node for the given device name and tag, assigning the
// next free major number. Names must be unique within a registry.
func (r *NodeRegistry) Register(name string, tag int) (*Node, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.nodes[name]; ok {
		return nil, fmt.Errorf("%w: %s (major %d)", ErrDuplicateNode, name, existing.Major)
	}

	node := &Node{
		Name:      name,
		Tag:       tag,
		Major:     r.nextMajor,
		Minor:     0,
		Path:      "/dev/" + name,
		CreatedAt: time.Now(),
		registry:  r,
	}
	r.nextMajor++
	r.nodes[name] = node

	return node, nil
}

// Unregister removes a node by name.
func (r *NodeRegistry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.nodes[name]; !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, name)
	}

	delete(r.nodes, name)
	return nil
}

// Lookup returns the node registered under the given name.
func (r *NodeRegistry) Lookup(name string) (*Node, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	node, ok := r.nodes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, name)
	}
	return node, nil
}

// List returns all registered nodes.
func (r *NodeRegistry) List() []*Node {
	r.mu.Lock()
	defer r.mu.Unlock()

	nodes := make([]*Node, 0, len(r.nodes))
	for _, node := range r.nodes {
		nodes = append(nodes, node)
	}
	return nodes
}

// Count returns the number of registered nodes.
func (r *NodeRegistry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.nodes)
}

// notify invokes the change callback outside the registry lock.
func (r *NodeRegistry) notify(node *Node) {
	r.mu.Lock()
	fn := r.onChange
	r.mu.Unlock()

	if fn != nil {
		fn(node)
	}
}
