// Package nodelink draws a commit graph as a node-link diagram.
//
// [ToDOT] produces Graphviz DOT source with one node per commit and an edge
// from every parent to its child. [RenderSVG] lays the source out in-process
// with [github.com/goccy/go-graphviz]:
//
//	dot, err := nodelink.ToDOT(rec.Graph(), nodelink.Options{Heads: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [Export] picks the format from a file name, which is what `build --graph`
// uses.
package nodelink
