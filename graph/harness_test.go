// Copyright (c) 2024 Richard Shepherd
// SPDX-License-Identifier: Apache-2.0

// Small synthetic node kinds used across the graph package's test suite:
// a source node holding a mutable int, a node that sums two sources, and a
// node that auto-rebuilds which source it reads from based on a flag - the
// same shape as the auto-rebuild scenario in examples/pricing, kept minimal
// here so the core engine's tests don't depend on the example packages.

package graph_test

import "github.com/richard-shepherd/calcgraph/graph"

type valueBuilder struct {
	id    string
	value int
}

func (b valueBuilder) Kind() string     { return "Value" }
func (b valueBuilder) Identity() string { return b.id }
func (b valueBuilder) Build(base *graph.BaseNode) graph.Node {
	n := &valueNode{BaseNode: base, Value: b.value}
	graph.InitBaseNode(base, n)
	return n
}

type valueNode struct {
	*graph.BaseNode
	Value int
}

// CalculateQuality is a no-op: like Value, a value node's quality is set
// directly by the tests, and the default would clear it to Good on every
// recalculation.
func (n *valueNode) CalculateQuality() {}

type sumBuilder struct {
	leftID, rightID string
}

func (b sumBuilder) Kind() string     { return "Sum" }
func (b sumBuilder) Identity() string { return b.leftID + "+" + b.rightID }
func (b sumBuilder) Build(base *graph.BaseNode) graph.Node {
	n := &sumNode{BaseNode: base, leftID: b.leftID, rightID: b.rightID}
	graph.InitBaseNode(base, n)
	return n
}

type sumNode struct {
	*graph.BaseNode
	leftID, rightID string
	left, right     *valueNode
	Sum             int
	calculateCount  int
}

func (n *sumNode) SetDependencies() {
	n.left = n.AddParentNode(valueBuilder{id: n.leftID}, false).(*valueNode)
	n.right = n.AddParentNode(valueBuilder{id: n.rightID}, false).(*valueNode)
}

func (n *sumNode) Calculate() graph.CalcResult {
	n.calculateCount++
	newSum := n.left.Value + n.right.Value
	if newSum == n.Sum {
		return graph.DoNotCalculateChildren
	}
	n.Sum = newSum
	return graph.CalculateChildren
}

// flagBuilder/flagNode hold a mutable boolean used to drive chooserNode's
// auto-rebuild.
type flagBuilder struct {
	id string
}

func (b flagBuilder) Kind() string     { return "Flag" }
func (b flagBuilder) Identity() string { return b.id }
func (b flagBuilder) Build(base *graph.BaseNode) graph.Node {
	n := &flagNode{BaseNode: base}
	graph.InitBaseNode(base, n)
	return n
}

type flagNode struct {
	*graph.BaseNode
	On bool
}

// chooserBuilder/chooserNode depends, via auto-rebuild, on a flag node and
// one of two value nodes selected by the flag's state. When the flag flips,
// ResetDependencies swaps which value node is the current parent.
type chooserBuilder struct {
	id, flagID, whenOnID, whenOffID string
}

func (b chooserBuilder) Kind() string     { return "Chooser" }
func (b chooserBuilder) Identity() string { return b.id }
func (b chooserBuilder) Build(base *graph.BaseNode) graph.Node {
	n := &chooserNode{BaseNode: base, flagID: b.flagID, whenOnID: b.whenOnID, whenOffID: b.whenOffID}
	graph.InitBaseNode(base, n)
	return n
}

type chooserNode struct {
	*graph.BaseNode
	flagID, whenOnID, whenOffID string
	flag                        *flagNode
	chosen                      *valueNode
	Value                       int
}

func (n *chooserNode) SetDependencies() {
	n.flag = n.AddParentNode(flagBuilder{id: n.flagID}, true).(*flagNode)
	id := n.whenOffID
	if n.flag.On {
		id = n.whenOnID
	}
	n.chosen = n.AddParentNode(valueBuilder{id: id}, false).(*valueNode)
}

func (n *chooserNode) Calculate() graph.CalcResult {
	newValue := n.chosen.Value
	if newValue == n.Value {
		return graph.DoNotCalculateChildren
	}
	n.Value = newValue
	return graph.CalculateChildren
}
