package badge

import (
	"html"

	"github.com/hochfrequenz/build-annotator/internal/annotation"
	"github.com/hochfrequenz/build-annotator/internal/domain"
)

// SummaryBuilder accumulates rich-text fragments into one summary entry.
// The entry is appended to the store on the first append call.
type SummaryBuilder struct {
	store *annotation.Store
	icon  string
	entry *domain.Summary
}

// AppendText appends escaped text with optional formatting
func (b *SummaryBuilder) AppendText(text string, bold, italic, underline bool, color string) *SummaryBuilder {
	fragment := html.EscapeString(text)
	if bold {
		fragment = "<b>" + fragment + "</b>"
	}
	if italic {
		fragment = "<i>" + fragment + "</i>"
	}
	if underline {
		fragment = "<u>" + fragment + "</u>"
	}
	if color != "" {
		fragment = `<font color="` + html.EscapeString(color) + `">` + fragment + "</font>"
	}
	return b.append(fragment)
}

// AppendHtml appends a raw HTML fragment verbatim
func (b *SummaryBuilder) AppendHtml(rawHTML string) *SummaryBuilder {
	return b.append(rawHTML)
}

// Text returns the accumulated fragment
func (b *SummaryBuilder) Text() string {
	if b.entry == nil {
		return ""
	}
	return b.entry.Text
}

func (b *SummaryBuilder) append(fragment string) *SummaryBuilder {
	if b.entry == nil {
		b.entry = &domain.Summary{Icon: b.icon}
		b.store.AppendSummary(b.entry)
	}
	b.entry.Text += fragment
	return b
}
