package chart

import (
	"errors"
	"slices"

	"github.com/google/uuid"
)

// ChildOffsetY is how far below its parent a new child is placed before any
// layout pass runs.
const ChildOffsetY = 200

var (
	// ErrUnknownNode is returned when an operation names a node that does not exist.
	ErrUnknownNode = errors.New("unknown node")

	// ErrUnknownSourceNode is returned by [Graph.Connect] when the source does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.Connect] when the target does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrSelfLoop is returned by [Graph.Connect] when source and target are the same node.
	ErrSelfLoop = errors.New("node cannot report to itself")

	// ErrSecondParent is returned by [Graph.Connect] when the target already has a parent.
	ErrSecondParent = errors.New("target already has a parent")

	// ErrCycle is returned by [Graph.Connect] when the target is an ancestor of the source.
	ErrCycle = errors.New("connection would create a cycle")

	// ErrConnectToRoot is returned by [Graph.Connect] when the target is the root.
	ErrConnectToRoot = errors.New("root cannot have a parent")

	// ErrRootDeletion is returned when a delete targets the root node.
	ErrRootDeletion = errors.New("root node cannot be deleted directly")

	// ErrCandidateIsRoot is returned by [Graph.PromoteRoot] when the candidate
	// is already the root.
	ErrCandidateIsRoot = errors.New("candidate is already the root")

	// ErrDuplicateNodeID is returned by [FromParts] and [Graph.Validate].
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrDuplicateEdgeID is returned by [FromParts] and [Graph.Validate].
	ErrDuplicateEdgeID = errors.New("duplicate edge ID")

	// ErrInvalidNodeID is returned by [FromParts] for empty node IDs.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrInvalidEdgeEndpoint is returned by [FromParts] and [Graph.Validate]
	// when an edge references a node that does not exist.
	ErrInvalidEdgeEndpoint = errors.New("invalid edge endpoint")

	// ErrMultipleRoots is returned by [Graph.Validate] when more than one node
	// carries the root flag.
	ErrMultipleRoots = errors.New("more than one root node")
)

// Position is a canvas coordinate in pixels, y growing downward.
type Position struct {
	X float64 `json:"x" yaml:"x" bson:"x"`
	Y float64 `json:"y" yaml:"y" bson:"y"`
}

// Node is one organizational unit.
type Node struct {
	ID       string   `json:"id" yaml:"id" bson:"id"`
	Label    string   `json:"label" yaml:"label" bson:"label"`
	Position Position `json:"position" yaml:"position" bson:"position"`
	IsRoot   bool     `json:"isRoot,omitempty" yaml:"isRoot,omitempty" bson:"isRoot,omitempty"`
}

// Edge is a reporting line from a superior unit (Source) to a subordinate (Target).
type Edge struct {
	ID     string `json:"id" yaml:"id" bson:"id"`
	Source string `json:"source" yaml:"source" bson:"source"`
	Target string `json:"target" yaml:"target" bson:"target"`
}

// Graph is the mutable chart. The zero value is not usable; call [New] or
// [FromParts]. Graph is not safe for concurrent use without external
// synchronization.
type Graph struct {
	nodes    []*Node
	byID     map[string]*Node
	edges    []Edge
	edgeIDs  map[string]struct{}
	outgoing map[string][]string // nodeID -> child IDs, edge order
	incoming map[string][]string // nodeID -> parent IDs, edge order
	newID    func() string
}

// Option configures a Graph.
type Option func(*Graph)

// WithIDGenerator replaces the random node ID generator. Tests use it to get
// predictable identifiers.
func WithIDGenerator(fn func() string) Option {
	return func(g *Graph) { g.newID = fn }
}

// New creates an empty graph.
func New(opts ...Option) *Graph {
	g := &Graph{newID: uuid.NewString}
	for _, opt := range opts {
		opt(g)
	}
	g.reindex()
	return g
}

// FromParts builds a graph from already-persisted nodes and edges, keeping
// their identifiers and order. It fails on empty or duplicate IDs and on edges
// whose endpoints are missing. Structural problems that a user can repair in
// the editor (orphans, several parents) are accepted; see [Graph.Validate].
func FromParts(nodes []Node, edges []Edge, opts ...Option) (*Graph, error) {
	g := New(opts...)
	for _, n := range nodes {
		if n.ID == "" {
			return nil, ErrInvalidNodeID
		}
		if _, dup := g.byID[n.ID]; dup {
			return nil, errors.Join(ErrDuplicateNodeID, errors.New(n.ID))
		}
		node := n
		g.nodes = append(g.nodes, &node)
		g.byID[n.ID] = &node
	}
	for _, e := range edges {
		if _, dup := g.edgeIDs[e.ID]; dup || e.ID == "" {
			return nil, errors.Join(ErrDuplicateEdgeID, errors.New(e.ID))
		}
		if g.byID[e.Source] == nil || g.byID[e.Target] == nil {
			return nil, errors.Join(ErrInvalidEdgeEndpoint, errors.New(e.ID))
		}
		g.appendEdge(e)
	}
	return g, nil
}

func (g *Graph) reindex() {
	g.byID = make(map[string]*Node, len(g.nodes))
	for _, n := range g.nodes {
		g.byID[n.ID] = n
	}
	g.edgeIDs = make(map[string]struct{}, len(g.edges))
	g.outgoing = make(map[string][]string)
	g.incoming = make(map[string][]string)
	for _, e := range g.edges {
		g.edgeIDs[e.ID] = struct{}{}
		g.outgoing[e.Source] = append(g.outgoing[e.Source], e.Target)
		g.incoming[e.Target] = append(g.incoming[e.Target], e.Source)
	}
}

func (g *Graph) appendEdge(e Edge) {
	g.edges = append(g.edges, e)
	g.edgeIDs[e.ID] = struct{}{}
	g.outgoing[e.Source] = append(g.outgoing[e.Source], e.Target)
	g.incoming[e.Target] = append(g.incoming[e.Target], e.Source)
}

// Node returns a copy of the node with the given ID.
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.byID[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// HasNode reports whether a node with the given ID exists.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.byID[id]
	return ok
}

// Nodes returns copies of all nodes in insertion order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.nodes))
	for i, n := range g.nodes {
		out[i] = *n
	}
	return out
}

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// Edge returns the edge with the given ID.
func (g *Graph) Edge(id string) (Edge, bool) {
	for _, e := range g.edges {
		if e.ID == id {
			return e, true
		}
	}
	return Edge{}, false
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Clone returns a deep copy that shares no state with g.
func (g *Graph) Clone() *Graph {
	c := &Graph{newID: g.newID}
	c.nodes = make([]*Node, len(g.nodes))
	for i, n := range g.nodes {
		node := *n
		c.nodes[i] = &node
	}
	c.edges = slices.Clone(g.edges)
	c.reindex()
	return c
}

// Equal reports whether g and o hold the same nodes and edges in the same order.
func (g *Graph) Equal(o *Graph) bool {
	if g == nil || o == nil {
		return g == o
	}
	if len(g.nodes) != len(o.nodes) || !slices.Equal(g.edges, o.edges) {
		return false
	}
	for i, n := range g.nodes {
		if *n != *o.nodes[i] {
			return false
		}
	}
	return true
}
