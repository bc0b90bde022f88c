// Package models defines the renderable units that sources produce and the
// formatter turns into a single status line.
package models

import "fmt"

// DefaultForeground is the light text colour used by most blocks.
const DefaultForeground = "#EAEAEA"

// Style holds the four optional colours of a block. An empty string means
// "inherit" and renders as nothing.
type Style struct {
	TextFg string `yaml:"text_fg"`
	TextBg string `yaml:"text_bg"`
	IconFg string `yaml:"icon_fg"`
	IconBg string `yaml:"icon_bg"`
}

// TextStyle returns a style with only the text colours set.
func TextStyle(fg, bg string) Style {
	return Style{TextFg: fg, TextBg: bg}
}

// WithIcon returns a copy of s with the icon colours replaced.
func (s Style) WithIcon(fg, bg string) Style {
	s.IconFg = fg
	s.IconBg = bg
	return s
}

// WithText returns a copy of s with the text colours replaced.
func (s Style) WithText(fg, bg string) Style {
	s.TextFg = fg
	s.TextBg = bg
	return s
}

// resolved fills unset icon colours from the text colour of the same channel.
func (s Style) resolved() Style {
	if s.IconFg == "" {
		s.IconFg = s.TextFg
	}
	if s.IconBg == "" {
		s.IconBg = s.TextBg
	}
	return s
}

// Block is one icon + text pair rendered into the status line.
// Blocks are values; build them with NewBlock so the icon colour fallback
// is baked in.
type Block struct {
	Icon  string
	Text  string
	Style Style
}

// NewBlock creates a block with the style's icon colours resolved.
func NewBlock(icon, text string, style Style) Block {
	return Block{
		Icon:  icon,
		Text:  text,
		Style: style.resolved(),
	}
}

// WithText returns a copy of b carrying a different text.
func (b Block) WithText(text string) Block {
	b.Text = text
	return b
}

// String renders the block as
// <icon-bg><icon-fg><icon> <text-bg><text-fg><text>.
func (b Block) String() string {
	return fmt.Sprintf("%s%s%s %s%s%s",
		background(b.Style.IconBg),
		foreground(b.Style.IconFg),
		b.Icon,
		background(b.Style.TextBg),
		foreground(b.Style.TextFg),
		b.Text,
	)
}

// foreground renders a status2d foreground escape, or nothing when unset.
func foreground(color string) string {
	if color == "" {
		return ""
	}
	return "^c" + color + "^"
}

func background(color string) string {
	if color == "" {
		return ""
	}
	return "^b" + color + "^"
}
