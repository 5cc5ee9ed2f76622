// Copyright (c) 2024 Richard Shepherd
// SPDX-License-Identifier: Apache-2.0

package graph

import (
	"fmt"
	"strings"
)

const dotIndent = "\t"

// RenderDOT renders a Dump snapshot as a Graphviz DOT digraph, for
// troubleshooting: Bad-quality nodes are colored red, Pinned nodes are
// boxes, everything else is an ellipse.
func RenderDOT(nodes []NodeInfoRecord) string {
	sb := strings.Builder{}
	sb.WriteString("digraph G {\n")

	for _, n := range nodes {
		color := "black"
		if !n.Quality.IsGood() {
			color = "red"
		}
		shape := "ellipse"
		if n.GCKind == Pinned {
			shape = "box"
		}
		sb.WriteString(fmt.Sprintf("%s%s [label=%q, shape=%s, color=%s, tooltip=%q];\n",
			dotIndent, escapeDOTName(n.ID), fmt.Sprintf("%s\\n%s", n.ID, n.Quality), shape, color,
			escapeDOTTooltip(n.Message)))
	}

	for _, n := range nodes {
		for _, parentID := range n.ParentIDs {
			sb.WriteString(fmt.Sprintf("%s%s -> %s;\n",
				dotIndent, escapeDOTName(parentID), escapeDOTName(n.ID)))
		}
	}

	sb.WriteString("}\n")
	return sb.String()
}

func escapeDOTName(name string) string {
	return strings.NewReplacer("-", "_", ":", "_", ".", "_", "+", "_").Replace(name)
}

func escapeDOTTooltip(tooltip string) string {
	return strings.Replace(tooltip, "\n", "\\n", -1)
}
