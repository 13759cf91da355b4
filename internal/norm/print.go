package norm

import (
	"fmt"
	"strings"
)

// Render returns a deterministic single-line rendering of a tree,
// e.g. `Obligation(Colour("red"), Zone("2"))`. Empty right children
// are elided so single-child nodes print with one argument.
func Render(n Node) string {
	var sb strings.Builder
	render(&sb, n)
	return sb.String()
}

func render(sb *strings.Builder, n Node) {
	switch x := n.(type) {
	case *NoNorm:
		fmt.Fprintf(sb, "NoNorm(%q)", x.value)
	case *Zone:
		fmt.Fprintf(sb, "Zone(%q)", x.value)
	case *Colour:
		fmt.Fprintf(sb, "Colour(%q)", x.value)
	case *Empty:
		sb.WriteString("Empty()")
	case *Norm, *Obligation, *Prohibition:
		b := n.(Branch)
		sb.WriteString(n.TypeName())
		sb.WriteByte('(')
		render(sb, b.Left())
		if _, empty := b.Right().(*Empty); !empty {
			sb.WriteString(", ")
			render(sb, b.Right())
		}
		sb.WriteByte(')')
	default:
		fmt.Fprintf(sb, "<unknown %T>", n)
	}
}

// RenderIndented returns a multi-line rendering with one node per
// line, each prefixed by its heap index. Used by the inspect command
// and golden snapshots.
func RenderIndented(n Node) string {
	var sb strings.Builder
	renderIndented(&sb, n, 1, 0)
	return sb.String()
}

func renderIndented(sb *strings.Builder, n Node, idx, indent int) {
	sb.WriteString(strings.Repeat("  ", indent))
	fmt.Fprintf(sb, "[%d] ", idx)
	switch x := n.(type) {
	case *NoNorm:
		fmt.Fprintf(sb, "NoNorm(%q)\n", x.value)
	case *Zone:
		fmt.Fprintf(sb, "Zone(%q)\n", x.value)
	case *Colour:
		fmt.Fprintf(sb, "Colour(%q)\n", x.value)
	case *Empty:
		sb.WriteString("Empty()\n")
	case *Norm, *Obligation, *Prohibition:
		b := n.(Branch)
		fmt.Fprintf(sb, "%s size=%d depth=%d\n", n.TypeName(), n.Size(), n.Depth())
		left, right := ChildIndices(idx)
		renderIndented(sb, b.Left(), left, indent+1)
		renderIndented(sb, b.Right(), right, indent+1)
	default:
		fmt.Fprintf(sb, "<unknown %T>\n", n)
	}
}
