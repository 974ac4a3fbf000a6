// ABOUTME: Pure render helpers mapping fetched fleet lists and node snapshots to display lines.
// ABOUTME: Every helper builds a fresh slice; callers replace their previous content wholesale.
package render

import (
	"fmt"
	"sort"

	"github.com/2389-research/natdash/api"
)

// NodeLinkPrefix is the detail-view link for a node, completed by its name.
const NodeLinkPrefix = "/nodes/?name="

// FleetEntry is one rendered line of the fleet list.
type FleetEntry struct {
	Name string
	Href string
}

// NodeView is every panel of the node detail view derived from one snapshot.
type NodeView struct {
	Local     string
	Neighbors []string
	Addresses []string
	Routing   []string
	Chat      []string
}

// NodeLink returns the detail-view link for a node. The name is inserted
// verbatim.
func NodeLink(name string) string {
	return NodeLinkPrefix + name
}

// FleetEntries renders the fleet list in delivered order.
func FleetEntries(names []string) []FleetEntry {
	entries := make([]FleetEntry, 0, len(names))
	for _, name := range names {
		entries = append(entries, FleetEntry{Name: name, Href: NodeLink(name)})
	}
	return entries
}

// Title renders the node view heading.
func Title(name string) string {
	return fmt.Sprintf("Node name: %s", name)
}

// LocalAddr renders the local address paragraph.
func LocalAddr(local string) string {
	return fmt.Sprintf("Local addr: %s", local)
}

// Neighbors renders the neighbor table, one line per peer, sorted by name.
func Neighbors(neigh map[string]string) []string {
	lines := make([]string, 0, len(neigh))
	for _, key := range sortedKeys(neigh) {
		lines = append(lines, fmt.Sprintf("name: %s, addr: %s", key, neigh[key]))
	}
	return lines
}

// Addresses renders the known address list in delivered order, duplicates kept.
func Addresses(addrs []string) []string {
	return append(make([]string, 0, len(addrs)), addrs...)
}

// Routing renders the routing table, one line per destination, sorted by destination.
func Routing(routing map[string]string) []string {
	lines := make([]string, 0, len(routing))
	for _, key := range sortedKeys(routing) {
		lines = append(lines, fmt.Sprintf("for %s, go to %s", key, routing[key]))
	}
	return lines
}

// Chat renders the chat log in snapshot order.
func Chat(msgs []api.ChatMessage) []string {
	lines := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		lines = append(lines, fmt.Sprintf("%s | from %s | at %s", msg.Text, msg.Source, msg.Time))
	}
	return lines
}

// Node derives every panel from a single snapshot.
func Node(snap api.NodeSnapshot) NodeView {
	return NodeView{
		Local:     LocalAddr(snap.Local),
		Neighbors: Neighbors(snap.Neighbors),
		Addresses: Addresses(snap.Addresses),
		Routing:   Routing(snap.Routing),
		Chat:      Chat(snap.Chat),
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
