// ABOUTME: Wire types for the node API: fleet registration, node snapshots, and operation envelopes.
// ABOUTME: Provides constructors for the direct, nat, and chat envelopes sent to a node.
package api

// OperationKind names a command the dashboard can send to a node.
type OperationKind string

const (
	OpDirect OperationKind = "direct"
	OpNat    OperationKind = "nat"
	OpChat   OperationKind = "chat"
)

// RegisterRequest is the body of POST /api/nodes/. Port is a pointer so an
// unparseable operator input is sent as JSON null rather than a made-up number.
type RegisterRequest struct {
	Name string `json:"name"`
	Port *int   `json:"port"`
}

// ChatMessage is a single entry of a node's chat log. Time is kept as the
// string the node delivered; the dashboard never interprets it.
type ChatMessage struct {
	Text   string `json:"text"`
	Source string `json:"src"`
	Time   string `json:"time"`
}

// NodeSnapshot is the full observed state of one node at fetch time.
type NodeSnapshot struct {
	Local     string            `json:"local"`
	Neighbors map[string]string `json:"neigh"`
	Addresses []string          `json:"addr"`
	Routing   map[string]string `json:"routing"`
	Chat      []ChatMessage     `json:"chat"`
}

// OperationEnvelope is the uniform command shape POSTed to /api/nodes/{name}.
type OperationEnvelope struct {
	Op   OperationKind `json:"op"`
	Data any           `json:"data"`
}

// DirectData asks a node to handshake with a peer at Addr.
type DirectData struct {
	Addr string `json:"addr"`
}

// NatData asks a node to start NAT traversal towards Dest. Local additionally
// offers the LAN address of the node to the destination.
type NatData struct {
	Dest  string `json:"dest"`
	Local bool   `json:"local,omitempty"`
}

// ChatData asks a node to deliver Text to Dest.
type ChatData struct {
	Dest string `json:"dest"`
	Text string `json:"text"`
}

// Direct builds a direct-connect envelope.
func Direct(addr string) OperationEnvelope {
	return OperationEnvelope{Op: OpDirect, Data: DirectData{Addr: addr}}
}

// Nat builds a NAT traversal envelope.
func Nat(dest string, local bool) OperationEnvelope {
	return OperationEnvelope{Op: OpNat, Data: NatData{Dest: dest, Local: local}}
}

// Chat builds a chat envelope.
func Chat(dest, text string) OperationEnvelope {
	return OperationEnvelope{Op: OpChat, Data: ChatData{Dest: dest, Text: text}}
}
