// Copyright (c) 2024 Richard Shepherd
// SPDX-License-Identifier: Apache-2.0

package graph

import "sort"

// NodeInfoRecord is a read-only snapshot of one node's state as of the end
// of the most recently completed Calculate cycle - the payload of
// GraphManager.Dump.
type NodeInfoRecord struct {
	ID        string
	Kind      string
	Quality   Quality
	Message   string
	GCKind    GCKind
	ParentIDs []string
}

// Dump returns a snapshot of every node currently in the graph, suitable
// for logging, diffing in tests, or rendering (see RenderDOT).
func (m *GraphManager) Dump() []NodeInfoRecord {
	out := make([]NodeInfoRecord, 0, len(m.nodes))
	for _, n := range m.nodes {
		parentIDs := make([]string, 0, len(n.parents))
		for p := range n.parents {
			parentIDs = append(parentIDs, p.id)
		}
		sort.Strings(parentIDs)

		out = append(out, NodeInfoRecord{
			ID:        n.id,
			Kind:      n.kind,
			Quality:   n.quality,
			Message:   n.self.InfoMessage(),
			GCKind:    n.gcKind,
			ParentIDs: parentIDs,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
