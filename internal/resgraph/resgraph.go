// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package resgraph

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"
)

// Kind is the type of a declared resource.
type Kind string

const (
	Bucket             Kind = "aws:s3:Bucket"
	BucketPublicAccess Kind = "aws:s3:BucketPublicAccessBlock"
	BucketPolicy       Kind = "aws:s3:BucketPolicy"
	BucketObject       Kind = "aws:s3:BucketObject"
	Role               Kind = "aws:iam:Role"
	RolePolicy         Kind = "aws:iam:RolePolicy"
	Function           Kind = "aws:lambda:Function"
	RestAPI            Kind = "aws:apigateway:RestApi"
	Deployment         Kind = "aws:apigateway:Deployment"
	Stage              Kind = "aws:apigateway:Stage"
	Permission         Kind = "aws:lambda:Permission"
	RuntimeConfig      Kind = "webstack:site:RuntimeConfig"
)

var (
	ErrDuplicate = errors.New("resource declared twice")
	ErrCycle     = errors.New("binding creates a cycle")
)

// Node is a declared resource.
type Node struct {
	ID   string `json:"id" yaml:"id"`
	Kind Kind   `json:"kind" yaml:"kind"`
	Name string `json:"name" yaml:"name"`
}

func nodeHash(n Node) string { return n.ID }

// Edge is a derived-value binding: To consumes Field of From.
type Edge struct {
	From  string `json:"from" yaml:"from"`
	To    string `json:"to" yaml:"to"`
	Field string `json:"field" yaml:"field"`
}

// Graph records which resources a composition declares and which derived
// values flow between them.
type Graph struct {
	g graph.Graph[string, Node]
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{g: graph.New(nodeHash, graph.Directed(), graph.Acyclic(), graph.PreventCycles())}
}

// Declare adds a resource. Each kind/name pair may be declared once.
func (g *Graph) Declare(kind Kind, name string) (Node, error) {
	n := Node{ID: string(kind) + "::" + name, Kind: kind, Name: name}
	if err := g.g.AddVertex(n, graph.VertexAttribute("label", name)); err != nil {
		if errors.Is(err, graph.ErrVertexAlreadyExists) {
			return Node{}, fmt.Errorf("%w: %s %s", ErrDuplicate, kind, name)
		}
		return Node{}, err
	}
	return n, nil
}

// Bind records that to consumes field of from.
func (g *Graph) Bind(from, to Node, field string) error {
	err := g.g.AddEdge(from.ID, to.ID, graph.EdgeAttribute("label", field))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, graph.ErrEdgeAlreadyExists):
		return nil
	case errors.Is(err, graph.ErrEdgeCreatesCycle):
		return fmt.Errorf("%w: %s -> %s", ErrCycle, from.Name, to.Name)
	default:
		return fmt.Errorf("failed to bind %s -> %s: %w", from.Name, to.Name, err)
	}
}

// Len is the number of declared resources.
func (g *Graph) Len() int {
	n, err := g.g.Order()
	if err != nil {
		return 0
	}
	return n
}

// Order returns every resource after the resources it depends on. Ties are
// broken by ID so the result is stable.
func (g *Graph) Order() ([]Node, error) {
	ids, err := graph.StableTopologicalSort(g.g, func(a, b string) bool { return a < b })
	if err != nil {
		return nil, err
	}

	nodes := make([]Node, 0, len(ids))
	for _, id := range ids {
		n, err := g.g.Vertex(id)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

// Dependencies returns the resources n consumes values from, sorted by ID.
func (g *Graph) Dependencies(n Node) []Node {
	preds, err := g.g.PredecessorMap()
	if err != nil {
		return nil
	}

	var deps []Node
	for id := range preds[n.ID] {
		if v, err := g.g.Vertex(id); err == nil {
			deps = append(deps, v)
		}
	}
	sort.Slice(deps, func(i, j int) bool { return deps[i].ID < deps[j].ID })
	return deps
}

// Edges returns every binding sorted by source then target.
func (g *Graph) Edges() []Edge {
	edges, err := g.g.Edges()
	if err != nil {
		return nil
	}

	out := make([]Edge, 0, len(edges))
	for _, e := range edges {
		out = append(out, Edge{From: e.Source, To: e.Target, Field: e.Properties.Attributes["label"]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return out
}

// DOT writes the graph in Graphviz format.
func (g *Graph) DOT(w io.Writer) error {
	return draw.DOT(g.g, w, draw.GraphAttribute("rankdir", "LR"))
}

// Find returns the declared node of kind with name.
func (g *Graph) Find(kind Kind, name string) (Node, bool) {
	n, err := g.g.Vertex(string(kind) + "::" + name)
	return n, err == nil
}
