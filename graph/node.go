// Copyright (c) 2024 Richard Shepherd
// SPDX-License-Identifier: Apache-2.0

package graph

// GCKind classifies a node for the purposes of the reachability-based
// garbage collector. Pinned nodes are GC roots; Collectable nodes survive
// only as long as they are reachable (as an ancestor) from some Pinned node.
type GCKind int

const (
	// Collectable nodes are reaped once unreachable from every Pinned node.
	Collectable GCKind = iota
	// Pinned nodes are GC roots and are never reaped directly.
	Pinned
)

// String names the GCKind, for NodeInfo / debugging.
func (k GCKind) String() string {
	if k == Pinned {
		return "Pinned"
	}
	return "Collectable"
}

// CalcResult is the outcome a node's Calculate hook reports to the engine:
// whether its output changed enough that children should be forced to
// recalculate.
type CalcResult int

const (
	// CalculateChildren signals that this node's output changed and
	// children should recalculate even if nothing else marked them dirty.
	CalculateChildren CalcResult = iota
	// DoNotCalculateChildren signals no externally-visible change.
	DoNotCalculateChildren
)

// Hooks are the overridable parts of a node's lifecycle. BaseNode supplies
// sensible default behavior for every one of them; a domain node type
// embeds *BaseNode and overrides only the hooks it actually needs - Go's
// method promotion means an unoverridden hook falls through to BaseNode's
// default.
type Hooks interface {
	// SetDependencies declares this node's parents, normally via
	// AddParentNode. Default: no-op (a leaf node).
	SetDependencies()
	// PreCalculate runs just before CalculateQuality/Calculate, while the
	// node is validating. Default: performs the auto-rebuild check.
	PreCalculate()
	// CalculateQuality merges data quality from this node's inputs.
	// Default: clear to Good, then merge in every parent's quality.
	CalculateQuality()
	// Calculate produces this node's value. Default: returns
	// CalculateChildren unconditionally.
	Calculate() CalcResult
	// Dispose releases any non-graph resources held by the node. Default:
	// no-op.
	Dispose()
	// InfoMessage supplies the diagnostic text shown for this node in
	// NodeInfo dumps. Default: "".
	InfoMessage() string
}

// Node is a vertex of the calculation graph: stable identity plus the
// overridable lifecycle hooks. Domain node types satisfy this by embedding
// *BaseNode (which implements both Hooks and the identity accessors) and
// overriding whichever hooks they need.
type Node interface {
	Hooks
	// ID is this node's globally-unique identity within its graph.
	ID() string
	// Kind is the node's stable type tag, as supplied by its Builder.
	Kind() string
}

// baseAccessor is implemented by BaseNode (and therefore, by promotion, by
// every domain node type that embeds *BaseNode). It lets the engine recover
// the runtime state pointer from an opaque Node value.
type baseAccessor interface {
	base() *BaseNode
}

func nodeBase(n Node) *BaseNode {
	a, ok := n.(baseAccessor)
	if !ok {
		invariantBroken("node %s does not embed *graph.BaseNode", n.ID())
	}
	return a.base()
}

// BaseNode is the engine-owned runtime state shared by every node: edges,
// the invalidate/validate counter, GC bookkeeping, and quality. Domain node
// types embed *BaseNode and get default Hooks implementations by promotion;
// override individual methods to customize behavior.
type BaseNode struct {
	id      string
	kind    string
	manager *GraphManager

	// Environment is the opaque value supplied at manager construction,
	// the node's gateway to I/O, config, and singletons.
	Environment interface{}

	// self is the outer domain value (e.g. *CurrencyHolidaysNode). It lets
	// BaseNode's own default hook bodies invoke possibly-overridden hooks
	// on "this" node - Go's embedding alone cannot do that, since a method
	// called on the embedded type does not know about the outer type.
	self Node

	parents  map[*BaseNode]struct{}
	children map[*BaseNode]struct{}

	invalidCount int
	needsCalc    bool

	updatedParents     map[*BaseNode]struct{}
	autoRebuildParents map[*BaseNode]struct{}

	quality Quality

	gcKind     GCKind
	gcRefCount int

	// hasCalculated is reset to false for every node at the start of each
	// Calculate cycle (by the manager) and set true here only if Calculate
	// actually ran on this node during that cycle.
	hasCalculated bool

	// childrenThisCycle snapshots b.children at the moment invalidCount
	// first transitions from 0 to 1, so that children added/removed by a
	// calculate() elsewhere in the cycle don't change who gets validated.
	childrenThisCycle []*BaseNode
}

func newBaseNode(id, kind string, manager *GraphManager, environment interface{}) *BaseNode {
	return &BaseNode{
		id:          id,
		kind:        kind,
		manager:     manager,
		Environment: environment,
		needsCalc:   true,
	}
}

// InitBaseNode wires a freshly-allocated BaseNode to its outer domain value.
// A Builder's Build method must call this exactly once, passing itself as
// self, before returning the node to the factory. This is the node's only
// construction path.
func InitBaseNode(b *BaseNode, self Node) {
	b.self = self
}

func (b *BaseNode) base() *BaseNode { return b }

// ID returns the node's globally-unique identity within its graph.
func (b *BaseNode) ID() string { return b.id }

// Kind returns the node's stable type tag.
func (b *BaseNode) Kind() string { return b.kind }

// Quality returns the node's current data quality.
func (b *BaseNode) Quality() Quality { return b.quality }

// SetQuality lets domain code set this node's quality directly, typically
// from within an overridden CalculateQuality or Calculate.
func (b *BaseNode) SetQuality(q Quality) { b.quality = q }

// HasCalculated reports whether Calculate ran on this node during the most
// recently completed cycle.
func (b *BaseNode) HasCalculated() bool { return b.hasCalculated }

// NeedsCalculation marks this node dirty, so Calculate runs on it again at
// the manager's next cycle. Source nodes call this from their own event
// handlers (e.g. an observer callback reporting that external data changed)
// rather than waiting to be invalidated by a parent.
func (b *BaseNode) NeedsCalculation() {
	b.manager.NeedsCalculation(b.self)
}

// NeedsCalc reports whether this node is queued to run Calculate on the
// next cycle.
func (b *BaseNode) NeedsCalc() bool { return b.needsCalc }

// GCKind reports whether this node is a Pinned GC root or Collectable.
func (b *BaseNode) GCKind() GCKind { return b.gcKind }

// ParentUpdated reports whether parent caused this node to calculate in the
// current cycle (i.e. parent is a member of this node's updated-parents
// set). A late parent - one that was new this cycle but calculated after b
// had already validated - populates this on the following cycle instead,
// once the manager marks b dirty for it.
func (b *BaseNode) ParentUpdated(parent Node) bool {
	_, ok := b.updatedParents[nodeBase(parent)]
	return ok
}

// Parents returns the node's current parents. The returned slice is a
// snapshot; mutating the graph does not affect it.
func (b *BaseNode) Parents() []*BaseNode {
	out := make([]*BaseNode, 0, len(b.parents))
	for p := range b.parents {
		out = append(out, p)
	}
	return out
}

// Children returns the node's current children, as a snapshot.
func (b *BaseNode) Children() []*BaseNode {
	out := make([]*BaseNode, 0, len(b.children))
	for c := range b.children {
		out = append(out, c)
	}
	return out
}

// --- default Hooks implementations -----------------------------------

// SetDependencies is the default no-op: a leaf node with no parents.
func (b *BaseNode) SetDependencies() {}

// PreCalculate is the default auto-rebuild check: if any parent that
// triggered this calculation is also one of the auto-rebuild parents,
// dependencies are reset before calculation continues.
func (b *BaseNode) PreCalculate() {
	for p := range b.updatedParents {
		if _, autoRebuild := b.autoRebuildParents[p]; autoRebuild {
			b.resetDependencies()
			return
		}
	}
}

// CalculateQuality is the default quality merge: clear to Good, then merge
// in every parent's quality.
func (b *BaseNode) CalculateQuality() {
	b.quality.ClearToGood()
	for p := range b.parents {
		b.quality.Merge(p.quality)
	}
}

// Calculate is the default calculate body: does nothing, and always
// reports that children should recalculate.
func (b *BaseNode) Calculate() CalcResult { return CalculateChildren }

// Dispose is the default cleanup hook: no non-graph resources to release.
func (b *BaseNode) Dispose() {}

// InfoMessage is the default dump annotation: none.
func (b *BaseNode) InfoMessage() string { return "" }

// --- edges -------------------------------------------------------------

// AddParent links parent as a parent of b (and b as a child of parent).
// Idempotent; nil is ignored.
func (b *BaseNode) AddParent(parent *BaseNode) {
	if parent == nil {
		return
	}
	if _, ok := b.parents[parent]; ok {
		return
	}
	if b.parents == nil {
		b.parents = make(map[*BaseNode]struct{})
	}
	b.parents[parent] = struct{}{}
	if parent.children == nil {
		parent.children = make(map[*BaseNode]struct{})
	}
	parent.children[b] = struct{}{}
}

// RemoveParent unlinks parent from b, symmetrically. Marks the graph as
// needing GC, since removing a link may leave nodes unreachable.
func (b *BaseNode) RemoveParent(parent *BaseNode) {
	if _, ok := b.parents[parent]; !ok {
		return
	}
	delete(b.parents, parent)
	delete(parent.children, b)
	b.manager.linkRemoved()
}

// RemoveParents unlinks every parent of b, symmetrically.
func (b *BaseNode) RemoveParents() {
	for p := range b.parents {
		delete(p.children, b)
	}
	b.parents = nil
	b.manager.linkRemoved()
}

// RemoveChildren unlinks every child of b, symmetrically.
func (b *BaseNode) RemoveChildren() {
	for c := range b.children {
		delete(c.parents, b)
	}
	b.children = nil
}

// AddParentNode resolves or creates (via the manager's factory) the node
// described by builder (requested as Collectable; a node that is already
// Pinned keeps its pin), links it as a parent of b, and - if
// autoRebuild is set - records it as an auto-rebuild parent so that a
// future update from it triggers ResetDependencies before b recalculates.
// This is the preferred way for SetDependencies to declare parents.
func (b *BaseNode) AddParentNode(builder Builder, autoRebuild bool) Node {
	parent := b.manager.factory.GetNode(b.manager, Collectable, builder)
	pb := nodeBase(parent)
	b.AddParent(pb)
	if autoRebuild {
		if b.autoRebuildParents == nil {
			b.autoRebuildParents = make(map[*BaseNode]struct{})
		}
		b.autoRebuildParents[pb] = struct{}{}
	}
	return parent
}

// --- auto-rebuild / shape change ---------------------------------------

// resetDependencies asks the node to recreate its dependencies: it clears
// auto-rebuild parents, removes all current parents, calls SetDependencies
// again (repopulating them), and tells the manager about any parents that
// are new as a result. If such a new parent goes on to calculate later this
// same cycle, the manager defers b's recalculation against it to the next
// cycle rather than recalculating b again now.
func (b *BaseNode) resetDependencies() {
	b.autoRebuildParents = nil

	before := make(map[*BaseNode]struct{}, len(b.parents))
	for p := range b.parents {
		before[p] = struct{}{}
	}

	b.RemoveParents()
	b.self.SetDependencies()

	var newParents []*BaseNode
	for p := range b.parents {
		if _, existed := before[p]; !existed {
			newParents = append(newParents, p)
		}
	}
	if len(newParents) > 0 {
		b.manager.parentsUpdated(b, newParents)
	}
}

func (b *BaseNode) addUpdatedParent(parent *BaseNode) {
	if b.updatedParents == nil {
		b.updatedParents = make(map[*BaseNode]struct{})
	}
	b.updatedParents[parent] = struct{}{}
	b.manager.nodeHasUpdatedParents(b)
}

func (b *BaseNode) clearUpdatedParents() {
	b.updatedParents = nil
}

// --- invalidate / validate ----------------------------------------------

// invalidate marks b invalid and, on the first invalidation this cycle,
// recurses into its (snapshotted) children. parent is who triggered this -
// nil for the roots of the cycle's changed set.
func (b *BaseNode) invalidate(parent *BaseNode) {
	if parent != nil {
		b.addUpdatedParent(parent)
	}

	b.invalidCount++
	if b.invalidCount == 1 {
		b.childrenThisCycle = b.Children()
		for _, c := range b.childrenThisCycle {
			c.invalidate(b)
		}
	}
}

// validate is called once per invalidate() this node received. When the
// count returns to zero, every ancestor chain has validated and b may
// calculate; validation then propagates to the children captured at
// invalidate time.
func (b *BaseNode) validate() {
	if b.invalidCount <= 0 {
		invariantBroken("%s: invalidation count is unexpectedly non-positive", b.id)
	}
	b.invalidCount--
	if b.invalidCount != 0 {
		return
	}

	calcResult := DoNotCalculateChildren
	if b.needsCalc {
		b.self.PreCalculate()
		b.self.CalculateQuality()
		calcResult = b.self.Calculate()
		b.needsCalc = false
		b.hasCalculated = true
		b.manager.nodeCalculated(b)
	}

	for _, c := range b.childrenThisCycle {
		if calcResult == CalculateChildren {
			c.needsCalc = true
		}
		c.validate()
	}
}

// --- GC / lifecycle ------------------------------------------------------

func (b *BaseNode) addGCRefCount() {
	b.gcRefCount++
}

// releaseGCRefCount decrements the ref-count and reports the new value.
func (b *BaseNode) releaseGCRefCount() int {
	b.gcRefCount--
	return b.gcRefCount
}

func (b *BaseNode) setGCKind(kind GCKind) {
	b.gcKind = kind
	b.manager.updateGCInfoForNode(b)
}

// cleanup severs every edge (symmetrically) and runs the node's Dispose
// hook. Called by the manager when disposing the whole graph or reaping an
// unreachable node during GC.
func (b *BaseNode) cleanup() {
	b.RemoveParents()
	b.RemoveChildren()
	b.self.Dispose()
}
