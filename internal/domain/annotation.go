package domain

import "strings"

// BadgeKind distinguishes plain text badges from raw HTML fragments
type BadgeKind string

const (
	BadgeShortText BadgeKind = "short_text"
	BadgeHTML      BadgeKind = "html"
)

// BadgeStyle holds the optional visual attributes of a short text badge
type BadgeStyle struct {
	Color       string `yaml:"color,omitempty" json:"color,omitempty"`
	Background  string `yaml:"background,omitempty" json:"background,omitempty"`
	Border      string `yaml:"border,omitempty" json:"border,omitempty"`
	BorderColor string `yaml:"border_color,omitempty" json:"border_color,omitempty"`
}

// WithDefaults fills empty fields from defaults
func (s BadgeStyle) WithDefaults(defaults BadgeStyle) BadgeStyle {
	if s.Color == "" {
		s.Color = defaults.Color
	}
	if s.Background == "" {
		s.Background = defaults.Background
	}
	if s.Border == "" {
		s.Border = defaults.Border
	}
	if s.BorderColor == "" {
		s.BorderColor = defaults.BorderColor
	}
	return s
}

// CSS renders the style as an inline CSS declaration list
func (s BadgeStyle) CSS() string {
	var b strings.Builder
	if s.Border != "" {
		b.WriteString("border: " + s.Border + " solid " + s.BorderColor + ";")
	}
	if s.Background != "" {
		b.WriteString("background: " + s.Background + ";")
	}
	if s.Color != "" {
		b.WriteString("color: " + s.Color + ";")
	}
	return b.String()
}

// Badge is a small inline annotation attached to a build. Position is the
// index in the build's badge sequence, which is shared by all kinds.
type Badge struct {
	Position int         `yaml:"-" json:"position"`
	Kind     BadgeKind   `yaml:"kind" json:"kind"`
	Text     string      `yaml:"text" json:"text"`
	Icon     string      `yaml:"icon,omitempty" json:"icon,omitempty"`
	Link     string      `yaml:"link,omitempty" json:"link,omitempty"`
	Style    *BadgeStyle `yaml:"style,omitempty" json:"style,omitempty"`
}

// Summary is a rich-text annotation block. Text is an HTML fragment.
type Summary struct {
	Position int    `yaml:"-" json:"position"`
	Icon     string `yaml:"icon" json:"icon"`
	Text     string `yaml:"text" json:"text"`
}
