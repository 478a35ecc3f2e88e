package badge

import (
	"errors"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/hochfrequenz/build-annotator/internal/annotation"
	"github.com/hochfrequenz/build-annotator/internal/domain"
)

type fakeConsole struct {
	mu  sync.Mutex
	buf strings.Builder
}

func (c *fakeConsole) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Write(p)
}

func (c *fakeConsole) Contains(re *regexp.Regexp) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, line := range strings.Split(c.buf.String(), "\n") {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

type fakeBuild struct {
	result  domain.Result
	env     map[string]string
	tags    []string
	console fakeConsole
}

func (b *fakeBuild) Job() string { return "job" }
func (b *fakeBuild) Number() int { return 1 }
func (b *fakeBuild) Result() domain.Result { return b.result }
func (b *fakeBuild) SetResult(r domain.Result) { b.result = r }
func (b *fakeBuild) Console() domain.Console { return &b.console }
func (b *fakeBuild) Annotations() ([]domain.Badge, []domain.Summary) { return nil, nil }
func (b *fakeBuild) SetAnnotations([]domain.Badge, []domain.Summary) {}

func (b *fakeBuild) Getenv(name string) (string, bool) {
	v, ok := b.env[name]
	return v, ok
}

func (b *fakeBuild) IsA(tag string) bool {
	for _, t := range b.tags {
		if t == tag {
			return true
		}
	}
	return false
}

func newTestManager() (*Manager, *fakeBuild) {
	b := &fakeBuild{env: map[string]string{"axis1": "value1"}}
	return NewManager(b, annotation.NewStore()), b
}

func TestManager_AddShortTextDefaults(t *testing.T) {
	m, _ := newTestManager()

	m.AddShortText("testing", domain.BadgeStyle{})
	m.AddShortText("custom", domain.BadgeStyle{Color: "jenkins-!-color-dark-indigo", Border: "3px dotted"})

	badges := m.Store().Badges()
	if len(badges) != 2 {
		t.Fatalf("got %d badges, want 2", len(badges))
	}

	first := badges[0]
	if first.Kind != domain.BadgeShortText || first.Text != "testing" {
		t.Errorf("got %+v", first)
	}
	if first.Style == nil || *first.Style != DefaultShortTextStyle {
		t.Errorf("Style = %+v, want defaults", first.Style)
	}

	second := badges[1].Style
	if second.Color != "jenkins-!-color-dark-indigo" || second.Border != "3px dotted" {
		t.Errorf("explicit fields lost: %+v", second)
	}
	if second.Background != DefaultShortTextStyle.Background || second.BorderColor != DefaultShortTextStyle.BorderColor {
		t.Errorf("missing fields not defaulted: %+v", second)
	}
}

func TestManager_AddHtmlBadgeStoresVerbatim(t *testing.T) {
	m, _ := newTestManager()
	raw := `<script id="should-be-untainted">alert("exploit!");</script>`

	m.AddHtmlBadge(raw)

	b := m.Store().Badges()[0]
	if b.Kind != domain.BadgeHTML || b.Text != raw {
		t.Errorf("got %+v", b)
	}
	if b.Style != nil {
		t.Errorf("html badge should carry no style, got %+v", b.Style)
	}
}

func TestManager_SemanticBadges(t *testing.T) {
	m, _ := newTestManager()
	m.AddInfoBadge("info")
	m.AddWarningBadge("stuff is broken")
	m.AddErrorBadge("error")
	m.AddBadge("attribute.png", "plain", "https://jenkins.io/")

	badges := m.Store().Badges()
	wantIcons := []string{IconInfo, IconWarning, IconError, "attribute.png"}
	for i, want := range wantIcons {
		if badges[i].Icon != want {
			t.Errorf("badge %d icon = %q, want %q", i, badges[i].Icon, want)
		}
	}
	if badges[1].Text != "stuff is broken" {
		t.Errorf("warning text = %q", badges[1].Text)
	}
	if badges[3].Link != "https://jenkins.io/" {
		t.Errorf("link = %q", badges[3].Link)
	}
}

func TestManager_RemoveBadgeAcrossKinds(t *testing.T) {
	m, _ := newTestManager()
	m.AddHtmlBadge("test1")
	m.AddShortText("test2", domain.BadgeStyle{})

	if err := m.RemoveBadge(0); err != nil {
		t.Fatal(err)
	}

	badges := m.Store().Badges()
	if len(badges) != 1 || badges[0].Text != "test2" || badges[0].Position != 0 {
		t.Errorf("got %+v, want test2 at 0", badges)
	}

	if err := m.RemoveBadge(3); !errors.Is(err, annotation.ErrOutOfRange) {
		t.Errorf("error = %v, want ErrOutOfRange", err)
	}

	m.RemoveBadges()
	if m.Store().BadgeCount() != 0 {
		t.Error("RemoveBadges left entries behind")
	}
}

func TestManager_Summaries(t *testing.T) {
	m, _ := newTestManager()

	m.CreateSummary("attribute.png").AppendText("Test1", false, false, false, "Black")
	m.CreateSummary("attribute.png").AppendText("Test2", false, false, false, "Black")
	if err := m.RemoveSummary(0); err != nil {
		t.Fatal(err)
	}

	summaries := m.Store().Summaries()
	if len(summaries) != 1 {
		t.Fatalf("got %d summaries, want 1", len(summaries))
	}
	if want := `<font color="Black">Test2</font>`; summaries[0].Text != want {
		t.Errorf("Text = %q, want %q", summaries[0].Text, want)
	}

	m.RemoveSummaries()
	if m.Store().SummaryCount() != 0 {
		t.Error("RemoveSummaries left entries behind")
	}
}

func TestSummaryBuilder_AppendsToSameEntry(t *testing.T) {
	m, _ := newTestManager()

	builder := m.CreateSummary("info")
	if m.Store().SummaryCount() != 0 {
		t.Fatal("summary added before first append")
	}

	builder.AppendText("a<b", true, false, false, "").
		AppendText("c", false, true, true, "").
		AppendHtml("<br/>")

	summaries := m.Store().Summaries()
	if len(summaries) != 1 {
		t.Fatalf("got %d summaries, want 1", len(summaries))
	}
	want := "<b>a&lt;b</b><u><i>c</i></u><br/>"
	if summaries[0].Text != want {
		t.Errorf("Text = %q, want %q", summaries[0].Text, want)
	}
	if builder.Text() != want {
		t.Errorf("builder.Text() = %q", builder.Text())
	}
}

func TestManager_BuildAccessors(t *testing.T) {
	m, b := newTestManager()
	b.tags = []string{domain.TagChild}

	if !m.BuildIsA(domain.TagChild) || m.BuildIsA(domain.TagAggregate) {
		t.Error("BuildIsA did not follow build tags")
	}
	if got := m.GetEnvVariable("axis1"); got != "value1" {
		t.Errorf("GetEnvVariable = %q, want value1", got)
	}
	if got := m.GetEnvVariable("missing"); got != "" {
		t.Errorf("GetEnvVariable(missing) = %q, want empty", got)
	}
}

func TestManager_LogContainsSeesLatestOutput(t *testing.T) {
	m, b := newTestManager()

	found, err := m.LogContains(`^BUILD SUCCESSFUL`)
	if err != nil || found {
		t.Fatalf("found = %v, err = %v before write", found, err)
	}

	b.console.Write([]byte("compiling\nBUILD SUCCESSFUL in 3s\n"))

	found, err = m.LogContains(`^BUILD SUCCESSFUL`)
	if err != nil || !found {
		t.Errorf("found = %v, err = %v after write", found, err)
	}

	if _, err := m.LogContains("("); err == nil {
		t.Error("expected error for invalid pattern")
	}
}

func TestManager_RequestedIsMonotonic(t *testing.T) {
	m, _ := newTestManager()
	if m.Requested() != domain.ResultSuccess {
		t.Fatalf("initial = %s", m.Requested())
	}

	m.BuildFailure()
	m.BuildUnstable()

	if m.Requested() != domain.ResultFailure {
		t.Errorf("Requested = %s, want FAILURE", m.Requested())
	}
}
