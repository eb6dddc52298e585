package graph

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// NodeID is a content-addressed identifier for graph nodes: the SHA-256 of a
// path describing what the node is.
type NodeID [sha256.Size]byte

// NewNodeID hashes path into a NodeID.
func NewNodeID(path string) NodeID {
	return NodeID(sha256.Sum256([]byte(path)))
}

func (id NodeID) String() string {
	return hex.EncodeToString(id[:])
}

// Short returns the first 8 hex digits, enough to tell nodes apart in messages.
func (id NodeID) Short() string {
	return id.String()[:8]
}

func (id NodeID) IsZero() bool {
	return id == NodeID{}
}

// MarshalText lets NodeID serve as a JSON map key.
func (id NodeID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *NodeID) UnmarshalText(b []byte) error {
	if hex.DecodedLen(len(b)) != len(id) {
		return fmt.Errorf("graph: node id %q has wrong length", b)
	}
	_, err := hex.Decode(id[:], b)
	return err
}
