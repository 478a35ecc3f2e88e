package buildrecord

import (
	"fmt"
	"path"
	"strings"

	"github.com/hochfrequenz/build-annotator/internal/badge"
	"github.com/hochfrequenz/build-annotator/internal/domain"
	"gopkg.in/yaml.v3"
)

// Legacy action type names, matched on the part after the last dot
const (
	legacyBadgeType   = "GroovyPostbuildAction"
	legacySummaryType = "GroovyPostbuildSummaryAction"
)

// legacyIcons maps the old bundled images to current icon names
var legacyIcons = map[string]string{
	"info.gif":    badge.IconInfo,
	"warning.gif": badge.IconWarning,
	"error.gif":   badge.IconError,
	"success.gif": badge.IconSuccess,
}

type legacyRecord struct {
	Job     string         `yaml:"job"`
	Number  int            `yaml:"number"`
	Result  domain.Result  `yaml:"result"`
	Actions []legacyAction `yaml:"actions"`
}

type legacyAction struct {
	Type        string `yaml:"type"`
	IconPath    string `yaml:"iconPath"`
	Text        string `yaml:"text"`
	TextOnly    bool   `yaml:"textOnly"`
	Color       string `yaml:"color"`
	Background  string `yaml:"background"`
	Border      string `yaml:"border"`
	BorderColor string `yaml:"borderColor"`
	Link        string `yaml:"link"`
}

func decodeLegacy(data []byte) (*Record, error) {
	var old legacyRecord
	if err := yaml.Unmarshal(data, &old); err != nil {
		return nil, fmt.Errorf("parsing legacy build record: %w", err)
	}

	r := &Record{
		SchemaVersion: SchemaVersion,
		Job:           old.Job,
		Number:        old.Number,
		Result:        old.Result,
	}
	for _, a := range old.Actions {
		switch shortType(a.Type) {
		case legacyBadgeType:
			r.Badges = append(r.Badges, a.badge())
		case legacySummaryType:
			r.Summaries = append(r.Summaries, domain.Summary{
				Icon: legacyIcon(a.IconPath),
				Text: a.Text,
			})
		}
	}
	r.renumber()
	return r, nil
}

func (a legacyAction) badge() domain.Badge {
	b := domain.Badge{
		Kind: domain.BadgeShortText,
		Text: a.Text,
		Icon: legacyIcon(a.IconPath),
		Link: a.Link,
	}
	if a.TextOnly || a.IconPath == "" {
		style := domain.BadgeStyle{
			Color:       a.Color,
			Background:  a.Background,
			Border:      a.Border,
			BorderColor: a.BorderColor,
		}.WithDefaults(badge.DefaultShortTextStyle)
		b.Style = &style
	}
	return b
}

func shortType(t string) string {
	if i := strings.LastIndex(t, "."); i >= 0 {
		return t[i+1:]
	}
	return t
}

// legacyIcon maps bundled images by file name and keeps any other path verbatim
func legacyIcon(iconPath string) string {
	if iconPath == "" {
		return ""
	}
	if icon, ok := legacyIcons[path.Base(iconPath)]; ok {
		return icon
	}
	return iconPath
}
