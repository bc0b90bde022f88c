package models

import "strings"

const (
	// Divider separates two rendered blocks.
	Divider = "     |     "

	// Reset restores the bar's normal colour scheme. It follows every block.
	Reset = "^d^"
)

// Line joins the present blocks in the given order. Nil entries are
// absent sources and are skipped.
func Line(blocks []*Block) string {
	var sb strings.Builder
	first := true
	for _, b := range blocks {
		if b == nil {
			continue
		}
		if !first {
			sb.WriteString(Divider)
		}
		first = false
		sb.WriteString(b.String())
		sb.WriteString(Reset)
	}
	return sb.String()
}

