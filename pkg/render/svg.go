package render

import (
	"bytes"
	"fmt"
	"html"

	"github.com/complyviz/complyviz/pkg/layout"
	"github.com/complyviz/complyviz/pkg/rulebase"
)

// Edge stroke colors, a pure function of edge style.
const (
	colorOrigin    = "#2563eb" // blue: origin-triggered relationships
	colorReceiving = "#d97706" // amber: receiving-triggered relationships
)

// Node fill colors by variant.
var variantFill = map[string]string{
	rulebase.VariantCountryGroup: "#e0e7ff",
	rulebase.VariantCountry:      "#f1f5f9",
	rulebase.VariantRule:         "#fee2e2",
	rulebase.VariantEntry:        "#ecfdf5",
}

const svgMargin = 24.0

// RenderSVG renders a layout result as a standalone SVG document.
// Output is deterministic: nodes and edges are emitted in result order,
// which the layout engine already guarantees is stable.
func RenderSVG(r layout.Result) []byte {
	var buf bytes.Buffer

	w := r.Width + 2*svgMargin
	h := r.Height + 2*svgMargin
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n", w, h, w, h)
	fmt.Fprintf(&buf, `<g transform="translate(%.1f,%.1f)">`+"\n", svgMargin, svgMargin)

	centers := make(map[string][2]float64, len(r.Nodes))
	for _, n := range r.Nodes {
		centers[n.ID] = [2]float64{
			n.Position.X + n.Width/2,
			n.Position.Y + n.Height/2,
		}
	}

	// Edges first so nodes draw over them.
	for _, e := range r.Edges {
		src, okS := centers[e.Source]
		dst, okD := centers[e.Target]
		if !okS || !okD {
			continue
		}
		stroke := colorOrigin
		if e.Style == layout.StyleReceiving {
			stroke = colorReceiving
		}
		fmt.Fprintf(&buf,
			`  <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="1.5"/>`+"\n",
			src[0], src[1], dst[0], dst[1], stroke)
	}

	for _, n := range r.Nodes {
		fill, ok := variantFill[n.Variant]
		if !ok {
			// Unknown variant: generic rendering, label only.
			fill = "#ffffff"
		}
		fmt.Fprintf(&buf,
			`  <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="6" fill="%s" stroke="#334155"/>`+"\n",
			n.Position.X, n.Position.Y, n.Width, n.Height, fill)
		fmt.Fprintf(&buf,
			`  <text x="%.1f" y="%.1f" font-family="sans-serif" font-size="13" fill="#0f172a">%s</text>`+"\n",
			n.Position.X+10, n.Position.Y+20, html.EscapeString(nodeCaption(n)))
	}

	buf.WriteString("</g>\n</svg>\n")
	return buf.Bytes()
}

// nodeCaption builds the visible caption for a node. Groups show their
// member count, rules show their outcome; anything else is label-only.
func nodeCaption(n layout.PositionedNode) string {
	label := n.Data.DisplayLabel()
	switch n.Variant {
	case rulebase.VariantCountryGroup:
		return fmt.Sprintf("%s (%d)", label, n.Data.MemberCount())
	case rulebase.VariantRule:
		if n.Data.Outcome != "" {
			return fmt.Sprintf("%s [%s]", label, n.Data.Outcome)
		}
		return label
	default:
		return label
	}
}
