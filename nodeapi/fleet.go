// ABOUTME: In-memory simulated fleet of overlay nodes backing the node API simulator.
// ABOUTME: Handshakes link nodes, routing tables come from a BFS over neighbor links, and chat follows the routes.
package nodeapi

import (
	"errors"
	"fmt"
	"net"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/2389-research/natdash/api"
)

// Errors returned by Fleet operations. The HTTP layer maps them to status codes.
var (
	ErrNodeNotFound  = errors.New("node not found")
	ErrDuplicateName = errors.New("node name already registered")
	ErrPortInUse     = errors.New("port already in use")
	ErrInvalidPort   = errors.New("invalid port")
)

// publicHost is the address at which simulated nodes see each other.
const publicHost = "127.0.0.1"

// firstEphemeralPort is where automatic port assignment starts when a
// registration carries no port.
const firstEphemeralPort = 49152

// simNode is the state of one simulated node.
type simNode struct {
	name      string
	port      int
	neighbors map[string]string // neighbor name -> address the neighbor was seen at
	known     []string          // own addresses learned from handshakes, insertion order
	routing   map[string]string // destination -> next hop
	chat      []api.ChatMessage
}

func (n *simNode) learn(addr string) {
	for _, a := range n.known {
		if a == addr {
			return
		}
	}
	n.known = append(n.known, addr)
}

func (n *simNode) localAddr() string {
	return "0.0.0.0:" + strconv.Itoa(n.port)
}

// Fleet is a set of simulated nodes. It is safe for concurrent use.
type Fleet struct {
	mu    sync.Mutex
	nodes map[string]*simNode
	now   func() time.Time
}

// FleetOption configures a Fleet.
type FleetOption func(*Fleet)

// WithClock replaces the clock used to timestamp delivered chat messages.
func WithClock(now func() time.Time) FleetOption {
	return func(f *Fleet) {
		if now != nil {
			f.now = now
		}
	}
}

// NewFleet creates an empty fleet.
func NewFleet(opts ...FleetOption) *Fleet {
	f := &Fleet{
		nodes: make(map[string]*simNode),
		now:   time.Now,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Names returns every registered node name in sorted order.
func (f *Fleet) Names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.nodes))
	for name := range f.nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Register adds a node listening on port. A nil or zero port picks the first
// free port from the ephemeral range.
func (f *Fleet) Register(name string, port *int) error {
	if err := api.CheckName(name); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.nodes[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}

	p := 0
	if port != nil {
		p = *port
	}
	switch {
	case p == 0:
		p = f.freePortLocked()
	case p < 0 || p > 65535:
		return fmt.Errorf("%w: %d", ErrInvalidPort, p)
	case f.byPortLocked(p) != nil:
		return fmt.Errorf("%w: %d", ErrPortInUse, p)
	}

	f.nodes[name] = &simNode{
		name:      name,
		port:      p,
		neighbors: make(map[string]string),
		routing:   map[string]string{name: name},
	}
	return nil
}

// Snapshot returns the observable state of a node.
func (f *Fleet) Snapshot(name string) (api.NodeSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	n, ok := f.nodes[name]
	if !ok {
		return api.NodeSnapshot{}, fmt.Errorf("%w: %s", ErrNodeNotFound, name)
	}
	return api.NodeSnapshot{
		Local:     n.localAddr(),
		Neighbors: copyMap(n.neighbors),
		Addresses: append([]string{}, n.known...),
		Routing:   copyMap(n.routing),
		Chat:      append([]api.ChatMessage{}, n.chat...),
	}, nil
}

// Direct performs a handshake from name to whichever node listens on the
// port of addr. Unreachable or unparseable addresses are a silent no-op, as a
// datagram sent nowhere would be.
func (f *Fleet) Direct(name, addr string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	n, ok := f.nodes[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, name)
	}
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil
	}
	peer := f.byPortLocked(port)
	if peer == nil || peer == n {
		return nil
	}
	f.linkLocked(n, peer, addr, net.JoinHostPort(host, strconv.Itoa(n.port)))
	return nil
}

// Nat links name directly with dest when dest is reachable through the
// overlay. With local set, the peers record each other's local addresses
// instead of their public ones.
func (f *Fleet) Nat(name, dest string, local bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	n, ok := f.nodes[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, name)
	}
	peer, ok := f.nodes[dest]
	if !ok || peer == n {
		return nil
	}
	if _, reachable := n.routing[dest]; !reachable {
		return nil
	}
	peerAddr := net.JoinHostPort(publicHost, strconv.Itoa(peer.port))
	selfAddr := net.JoinHostPort(publicHost, strconv.Itoa(n.port))
	if local {
		peerAddr = peer.localAddr()
		selfAddr = n.localAddr()
	}
	f.linkLocked(n, peer, peerAddr, selfAddr)
	return nil
}

// Chat delivers text from name to dest when dest is reachable. Messages to
// unknown or unreachable destinations, or to the sender itself, are dropped.
func (f *Fleet) Chat(name, dest, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	n, ok := f.nodes[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, name)
	}
	peer, ok := f.nodes[dest]
	if !ok || peer == n {
		return nil
	}
	if _, reachable := n.routing[dest]; !reachable {
		return nil
	}
	peer.chat = append(peer.chat, api.ChatMessage{
		Text:   text,
		Source: n.name,
		Time:   f.now().UTC().Format(time.RFC3339Nano),
	})
	return nil
}

// linkLocked records a completed handshake between a and b. peerAddr is where
// a reached b; selfAddr is where b saw a.
func (f *Fleet) linkLocked(a, b *simNode, peerAddr, selfAddr string) {
	a.neighbors[b.name] = peerAddr
	b.neighbors[a.name] = selfAddr
	a.learn(selfAddr)
	b.learn(peerAddr)
	f.recomputeRoutesLocked()
}

// recomputeRoutesLocked rebuilds every routing table by breadth-first search
// from each node. The next hop for a destination is the neighbor the search
// first reached it through; a node routes to itself through itself.
func (f *Fleet) recomputeRoutesLocked() {
	for _, src := range f.nodes {
		routes := map[string]string{src.name: src.name}
		layer := sortedKeys(src.neighbors)
		for _, name := range layer {
			routes[name] = name
		}
		for len(layer) > 0 {
			var next []string
			for _, from := range layer {
				hop, ok := f.nodes[from]
				if !ok {
					continue
				}
				for _, to := range sortedKeys(hop.neighbors) {
					if _, seen := routes[to]; seen {
						continue
					}
					routes[to] = routes[from]
					next = append(next, to)
				}
			}
			layer = next
		}
		src.routing = routes
	}
}

func (f *Fleet) byPortLocked(port int) *simNode {
	for _, n := range f.nodes {
		if n.port == port {
			return n
		}
	}
	return nil
}

func (f *Fleet) freePortLocked() int {
	p := firstEphemeralPort
	for f.byPortLocked(p) != nil {
		p++
	}
	return p
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
