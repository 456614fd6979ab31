package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/transitgit/pkg/commitgraph"
)

// Options configures commit graph rendering.
type Options struct {
	// Detailed adds the short commit ID and branch to every label.
	// When false, only the stop name is shown.
	Detailed bool

	// Heads draws one label node per branch pointing at its head commit.
	Heads bool
}

// palette colours commits by the branch that first received them.
var palette = []string{
	"#4e79a7", "#f28e2b", "#e15759", "#76b7b2",
	"#59a14f", "#edc948", "#b07aa1", "#ff9da7",
}

// ToDOT converts a commit graph to Graphviz DOT. Commits are emitted in
// topological order with edges from parent to child, so history reads top
// to bottom. Merge commits are drawn as double octagons.
func ToDOT(g *commitgraph.Graph, opts Options) (string, error) {
	nodes, err := g.TopologicalOrder()
	if err != nil {
		return "", err
	}

	colors := make(map[string]string)
	for i, b := range g.Branches() {
		colors[b] = palette[i%len(palette)]
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", string(n.ID), strings.Join(fmtAttrs(n, colors, opts.Detailed), ", "))
	}

	buf.WriteString("\n")
	for _, n := range nodes {
		for _, p := range n.Parents {
			fmt.Fprintf(&buf, "  %q -> %q;\n", string(p), string(n.ID))
		}
	}

	if opts.Heads {
		heads := g.Heads()
		buf.WriteString("\n")
		for _, b := range g.Branches() {
			id := "branch:" + b
			fmt.Fprintf(&buf, "  %q [label=%q, shape=plaintext, style=\"\", fontcolor=%q];\n", id, b, colors[b])
			fmt.Fprintf(&buf, "  %q -> %q [style=dashed, arrowhead=none];\n", string(heads[b]), id)
		}
	}

	buf.WriteString("}\n")
	return buf.String(), nil
}

func fmtLabel(n commitgraph.Node, detailed bool) string {
	if !detailed {
		return n.Content
	}
	return n.Content + "\n" + n.ID.Short() + " on " + n.Branch
}

func fmtAttrs(n commitgraph.Node, colors map[string]string, detailed bool) []string {
	attrs := []string{
		fmt.Sprintf("label=%q", fmtLabel(n, detailed)),
		fmt.Sprintf("color=%q", colors[n.Branch]),
	}
	if n.IsMerge() {
		attrs = append(attrs, "shape=doubleoctagon", "penwidth=2")
	}
	return attrs
}

// RenderSVG renders DOT source to SVG using Graphviz compiled to WebAssembly,
// so no graphviz installation is needed.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the pt-sized root element Graphviz emits with a
// pixel-sized one anchored at the origin.
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

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// Export renders g in the format implied by name's extension: ".dot" or
// ".gv" for DOT source, ".svg" for SVG.
func Export(ctx context.Context, g *commitgraph.Graph, name string, opts Options) ([]byte, error) {
	dot, err := ToDOT(g, opts)
	if err != nil {
		return nil, err
	}
	switch ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), ".")); ext {
	case "dot", "gv":
		return []byte(dot), nil
	case "svg":
		return RenderSVG(ctx, dot)
	default:
		return nil, fmt.Errorf("unsupported graph format %q (want .dot or .svg)", ext)
	}
}
