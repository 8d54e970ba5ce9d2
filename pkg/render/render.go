// Package render draws local neighborhoods of a sequence graph as
// Graphviz diagrams.
//
// A neighborhood is the set of nodes within a fixed number of edge
// hops of a seed window. [NeighborhoodDOT] walks the graph's outgoing
// edges breadth-first and emits DOT source; [RenderSVG] rasterizes it
// in process through go-graphviz. The DOT output is deterministic, so
// it doubles as a debugging artifact for traversal behavior.
package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/seqgraph/seqgraph/pkg/annotation"
	"github.com/seqgraph/seqgraph/pkg/errors"
	"github.com/seqgraph/seqgraph/pkg/graph"
)

// Defaults applied when the corresponding option is zero.
const (
	DefaultRadius   = 2
	DefaultMaxNodes = 64
)

// Options configures neighborhood rendering.
type Options struct {
	// Radius is how many edge hops to follow from the seed. Zero uses
	// DefaultRadius.
	Radius int

	// MaxNodes caps the neighborhood size; expansion stops once the
	// cap is reached. Zero uses DefaultMaxNodes.
	MaxNodes int

	// Labels, when set, appends each node's annotation labels to its
	// box.
	Labels annotation.Matrix
}

// NeighborhoodDOT renders the subgraph around the seed window as
// Graphviz DOT. The seed node is highlighted; every edge drawn
// connects two nodes inside the neighborhood.
// Fails with NOT_FOUND when the seed is absent from the graph.
func NeighborhoodDOT(g graph.DBG, seed []byte, opts Options) (string, error) {
	root := g.Node(seed)
	if root == graph.NPos {
		return "", errors.New(errors.ErrCodeNotFound, "window %q is not in the graph", seed)
	}
	radius := opts.Radius
	if radius <= 0 {
		radius = DefaultRadius
	}
	maxNodes := opts.MaxNodes
	if maxNodes <= 0 {
		maxNodes = DefaultMaxNodes
	}

	order := []graph.NodeID{root}
	depth := map[graph.NodeID]int{root: 0}
	var edges [][2]graph.NodeID
	for i := 0; i < len(order); i++ {
		from := order[i]
		if depth[from] >= radius {
			continue
		}
		for _, to := range g.Neighbors(from) {
			if _, ok := depth[to]; !ok {
				if len(order) >= maxNodes {
					continue
				}
				depth[to] = depth[from] + 1
				order = append(order, to)
			}
			edges = append(edges, [2]graph.NodeID{from, to})
		}
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"monospace\"];\n")
	buf.WriteString("\n")

	for _, id := range order {
		name := string(g.NodeSeq(id))
		attrs := []string{fmt.Sprintf("label=%q", nodeLabel(g, opts.Labels, id))}
		if id == root {
			attrs = append(attrs, "fillcolor=lightblue")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", name, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range edges {
		fmt.Fprintf(&buf, "  %q -> %q;\n", g.NodeSeq(e[0]), g.NodeSeq(e[1]))
	}

	buf.WriteString("}\n")
	return buf.String(), nil
}

// nodeLabel builds the box text for a node: the stored window, plus
// its annotation labels when a matrix is supplied.
func nodeLabel(g graph.DBG, m annotation.Matrix, id graph.NodeID) string {
	label := string(g.NodeSeq(id))
	if m != nil {
		if names := m.LabelsOf(uint64(id - 1)); len(names) > 0 {
			label += "\n" + strings.Join(names, ", ")
		}
	}
	return label
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render SVG")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the outer <svg> tag so the drawing starts
// at the origin with explicit pixel dimensions. Graphviz likes to emit
// offset viewBoxes that embed poorly.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
