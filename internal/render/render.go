// Package render draws build records for the terminal
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/hochfrequenz/build-annotator/internal/buildrecord"
	"github.com/hochfrequenz/build-annotator/internal/domain"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	sectionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	indexStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))

	htmlStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("172"))

	dimmedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

var resultColors = map[domain.Result]lipgloss.Color{
	domain.ResultSuccess:  lipgloss.Color("42"),
	domain.ResultUnstable: lipgloss.Color("214"),
	domain.ResultFailure:  lipgloss.Color("196"),
	domain.ResultAborted:  lipgloss.Color("240"),
}

// Record renders a whole record: header, badges and summaries
func Record(r *buildrecord.Record) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(fmt.Sprintf("%s #%d", r.Job, r.Number)))
	sb.WriteString("  ")
	sb.WriteString(Result(r.Result))
	sb.WriteString("\n")

	sb.WriteString(section("Badges", len(r.Badges), func(lines *[]string) {
		for _, b := range r.Badges {
			*lines = append(*lines, Badge(b))
		}
	}))
	sb.WriteString(section("Summaries", len(r.Summaries), func(lines *[]string) {
		for _, s := range r.Summaries {
			*lines = append(*lines, Summary(s))
		}
	}))
	return sb.String()
}

// Result renders a result in its severity color
func Result(r domain.Result) string {
	return lipgloss.NewStyle().Bold(true).Foreground(resultColors[r]).Render(r.String())
}

// Badge renders one badge on a line. Short text is shown as plain text in
// the badge's own colors; HTML badges show the raw fragment, marked.
func Badge(b domain.Badge) string {
	var parts []string
	parts = append(parts, indexStyle.Render(fmt.Sprintf("%2d", b.Position)))
	if b.Icon != "" {
		parts = append(parts, dimmedStyle.Render("("+b.Icon+")"))
	}

	switch b.Kind {
	case domain.BadgeHTML:
		parts = append(parts, htmlStyle.Render("html:"), b.Text)
	default:
		parts = append(parts, badgeStyle(b.Style).Render(b.Text))
	}

	if b.Link != "" {
		parts = append(parts, dimmedStyle.Render("-> "+b.Link))
	}
	return strings.Join(parts, " ")
}

// Summary renders one summary on a line
func Summary(s domain.Summary) string {
	parts := []string{indexStyle.Render(fmt.Sprintf("%2d", s.Position))}
	if s.Icon != "" {
		parts = append(parts, dimmedStyle.Render("("+s.Icon+")"))
	}
	parts = append(parts, htmlStyle.Render("html:"), s.Text)
	return strings.Join(parts, " ")
}

func badgeStyle(style *domain.BadgeStyle) lipgloss.Style {
	st := lipgloss.NewStyle()
	if style == nil {
		return st
	}
	if style.Color != "" {
		st = st.Foreground(lipgloss.Color(style.Color))
	}
	if style.Background != "" {
		st = st.Background(lipgloss.Color(style.Background))
	}
	return st
}

func section(title string, n int, fill func(lines *[]string)) string {
	lines := []string{headingStyle.Render(fmt.Sprintf("%s (%d)", title, n))}
	if n == 0 {
		lines = append(lines, dimmedStyle.Render("none"))
	} else {
		fill(&lines)
	}
	return sectionStyle.Render(strings.Join(lines, "\n")) + "\n"
}
