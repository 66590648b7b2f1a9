package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/complyviz/complyviz/pkg/layout"
	"github.com/complyviz/complyviz/pkg/rulebase"
)

// ToDOT converts a layout result to Graphviz DOT source for node-link
// exports. Positions are not carried over — the graphviz engine lays the
// export out itself — but node variants and edge styles are preserved.
func ToDOT(r layout.Result) string {
	var buf bytes.Buffer
	buf.WriteString("digraph rulebase {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	for _, n := range r.Nodes {
		fmt.Fprintf(&buf, "  %q [label=%q, fillcolor=%q];\n",
			n.ID, dotLabel(n), dotFill(n.Variant))
	}

	buf.WriteString("\n")
	for _, e := range r.Edges {
		color := colorOrigin
		if e.Style == layout.StyleReceiving {
			color = colorReceiving
		}
		fmt.Fprintf(&buf, "  %q -> %q [color=%q];\n", e.Source, e.Target, color)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func dotLabel(n layout.PositionedNode) string {
	if n.Variant == rulebase.VariantCountryGroup {
		return fmt.Sprintf("%s\n%d countries", n.Data.DisplayLabel(), n.Data.MemberCount())
	}
	return n.Data.DisplayLabel()
}

func dotFill(variant string) string {
	if fill, ok := variantFill[variant]; ok {
		return fill
	}
	return "white"
}

// RasterizeDOT renders DOT source with the graphviz engine.
// Format must be graphviz.SVG or graphviz.PNG.
func RasterizeDOT(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
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
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderPNG rasterizes a layout result to PNG via DOT.
func RenderPNG(ctx context.Context, r layout.Result) ([]byte, error) {
	return RasterizeDOT(ctx, ToDOT(r), graphviz.PNG)
}
