// Package badge provides the capability object handed to post-build scripts.
// Every change a script makes to a build's annotations or status goes
// through a Manager.
package badge

import (
	"fmt"
	"regexp"

	"github.com/hochfrequenz/build-annotator/internal/annotation"
	"github.com/hochfrequenz/build-annotator/internal/domain"
)

// Icons used by the convenience constructors
const (
	IconInfo    = "symbol-information-circle"
	IconWarning = "symbol-warning"
	IconError   = "symbol-error"
	IconSuccess = "symbol-status-blue"
)

// DefaultShortTextStyle is the legacy plain short text look
var DefaultShortTextStyle = domain.BadgeStyle{
	Color:       "#000000",
	Background:  "#FFFF00",
	Border:      "1px",
	BorderColor: "#C0C000",
}

// API is the fixed set of operations a script may call
type API interface {
	AddShortText(text string, style domain.BadgeStyle) int
	AddShortTextLink(text, link string, style domain.BadgeStyle) int
	AddHtmlBadge(rawHTML string) int
	AddBadge(icon, text, link string) int
	AddInfoBadge(text string) int
	AddWarningBadge(text string) int
	AddErrorBadge(text string) int
	RemoveBadge(index int) error
	RemoveBadges()

	CreateSummary(icon string) *SummaryBuilder
	RemoveSummary(index int) error
	RemoveSummaries()

	BuildIsA(tag string) bool
	GetEnvVariable(name string) string
	LogContains(pattern string) (bool, error)

	BuildFailure()
	BuildUnstable()
}

// Manager binds the API to one build and its annotation store
type Manager struct {
	build     domain.Build
	store     *annotation.Store
	requested domain.Result
}

var _ API = (*Manager)(nil)

// NewManager creates a manager for build backed by store
func NewManager(build domain.Build, store *annotation.Store) *Manager {
	return &Manager{
		build:     build,
		store:     store,
		requested: domain.ResultSuccess,
	}
}

// Store returns the backing annotation store
func (m *Manager) Store() *annotation.Store {
	return m.store
}

// Requested returns the most severe result asked for through BuildFailure
// or BuildUnstable, or Success if neither was called
func (m *Manager) Requested() domain.Result {
	return m.requested
}

// AddShortText appends a short text badge. Empty style fields take the
// legacy defaults.
func (m *Manager) AddShortText(text string, style domain.BadgeStyle) int {
	return m.AddShortTextLink(text, "", style)
}

// AddShortTextLink is AddShortText with a link target
func (m *Manager) AddShortTextLink(text, link string, style domain.BadgeStyle) int {
	return m.addShortText("", text, link, style)
}

func (m *Manager) addShortText(icon, text, link string, style domain.BadgeStyle) int {
	resolved := style.WithDefaults(DefaultShortTextStyle)
	return m.store.AppendBadge(domain.Badge{
		Kind:  domain.BadgeShortText,
		Text:  text,
		Icon:  icon,
		Link:  link,
		Style: &resolved,
	})
}

// AddHtmlBadge appends a badge whose text is a raw HTML fragment. The
// fragment is stored verbatim; sanitizing it is up to the renderer.
func (m *Manager) AddHtmlBadge(rawHTML string) int {
	return m.store.AppendBadge(domain.Badge{
		Kind: domain.BadgeHTML,
		Text: rawHTML,
	})
}

// AddBadge appends an icon badge with optional link
func (m *Manager) AddBadge(icon, text, link string) int {
	return m.store.AppendBadge(domain.Badge{
		Kind: domain.BadgeShortText,
		Text: text,
		Icon: icon,
		Link: link,
	})
}

func (m *Manager) AddInfoBadge(text string) int {
	return m.addShortText(IconInfo, text, "", domain.BadgeStyle{})
}

func (m *Manager) AddWarningBadge(text string) int {
	return m.addShortText(IconWarning, text, "", domain.BadgeStyle{})
}

func (m *Manager) AddErrorBadge(text string) int {
	return m.addShortText(IconError, text, "", domain.BadgeStyle{})
}

// RemoveBadge removes the badge at index regardless of its kind
func (m *Manager) RemoveBadge(index int) error {
	return m.store.RemoveBadgeAt(index)
}

func (m *Manager) RemoveBadges() {
	m.store.ClearBadges()
}

// CreateSummary returns a builder for a new summary. Nothing is added to the
// build until the first append.
func (m *Manager) CreateSummary(icon string) *SummaryBuilder {
	return &SummaryBuilder{store: m.store, icon: icon}
}

func (m *Manager) RemoveSummary(index int) error {
	return m.store.RemoveSummaryAt(index)
}

func (m *Manager) RemoveSummaries() {
	m.store.ClearSummaries()
}

// BuildIsA reports whether the bound build carries the host type tag
func (m *Manager) BuildIsA(tag string) bool {
	return m.build.IsA(tag)
}

// GetEnvVariable returns the build's value for name, or "" if unset
func (m *Manager) GetEnvVariable(name string) string {
	v, _ := m.build.Getenv(name)
	return v
}

// LogContains reports whether any console line written so far matches pattern
func (m *Manager) LogContains(pattern string) (bool, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, fmt.Errorf("invalid log pattern: %w", err)
	}
	return m.build.Console().Contains(re), nil
}

// BuildFailure asks for the build to end no better than Failure
func (m *Manager) BuildFailure() {
	m.requested = m.requested.Combine(domain.ResultFailure)
}

// BuildUnstable asks for the build to end no better than Unstable
func (m *Manager) BuildUnstable() {
	m.requested = m.requested.Combine(domain.ResultUnstable)
}
