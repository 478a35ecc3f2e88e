package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hochfrequenz/build-annotator/internal/policy"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Default()

	if !cfg.PostBuild.Sandbox {
		t.Error("Sandbox should be enabled by default")
	}
	if cfg.API.Port != 8080 {
		t.Errorf("API.Port = %d, want 8080", cfg.API.Port)
	}
	if cfg.API.Host != "127.0.0.1" {
		t.Errorf("API.Host = %q, want 127.0.0.1", cfg.API.Host)
	}
	p, err := cfg.PostBuild.Policy()
	if err != nil || p != policy.DoNothing {
		t.Errorf("default Policy() = %v, %v, want DoNothing", p, err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.API.Port != 8080 {
		t.Errorf("API.Port = %d, want default 8080", cfg.API.Port)
	}
}

func TestLoad_FromFile(t *testing.T) {
	path := writeTempConfig(t, `
[general]
database_path = "/data/approvals.db"
records_dir = "/data/records"
debug = true

[postbuild]
script = "addInfoBadge hi"
sandbox = false
classpath = ["/libs/common.txt"]
behavior = "mark_unstable"
run_for_matrix_parent = true
timeout = "30s"

[notifications]
slack_webhook = "https://hooks.slack.example/T0"

[api]
port = 9000
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.General.DatabasePath != "/data/approvals.db" {
		t.Errorf("DatabasePath = %q", cfg.General.DatabasePath)
	}
	if !cfg.General.Debug {
		t.Error("Debug = false, want true")
	}
	if cfg.PostBuild.Sandbox {
		t.Error("Sandbox = true, want false")
	}
	if cfg.API.Port != 9000 {
		t.Errorf("API.Port = %d, want 9000", cfg.API.Port)
	}
	if cfg.Notifications.SlackWebhook != "https://hooks.slack.example/T0" || cfg.Notifications.Desktop {
		t.Errorf("Notifications = %+v", cfg.Notifications)
	}
	if cfg.API.Host != "127.0.0.1" {
		t.Errorf("API.Host = %q, want default", cfg.API.Host)
	}

	rc, err := cfg.RecorderConfig()
	if err != nil {
		t.Fatalf("RecorderConfig() error = %v", err)
	}
	if rc.Script != "addInfoBadge hi" || rc.Policy != policy.MarkUnstable || !rc.RunForAggregateParent || !rc.Debug {
		t.Errorf("RecorderConfig() = %+v", rc)
	}
	if len(rc.Classpath) != 1 || rc.Classpath[0].URL != "/libs/common.txt" {
		t.Errorf("Classpath = %+v", rc.Classpath)
	}

	d, err := cfg.PostBuild.TimeoutDuration()
	if err != nil || d != 30*time.Second {
		t.Errorf("TimeoutDuration() = %v, %v, want 30s", d, err)
	}
}

func TestPostBuild_LegacyBehaviorCodes(t *testing.T) {
	tests := []struct {
		behavior string
		want     policy.Policy
	}{
		{`0`, policy.DoNothing},
		{`1`, policy.MarkUnstable},
		{`2`, policy.MarkFailed},
		{`"2"`, policy.MarkFailed},
		{`"MarkFailed"`, policy.MarkFailed},
	}

	for _, tt := range tests {
		cfg, err := Load(writeTempConfig(t, "[postbuild]\nbehavior = "+tt.behavior+"\n"))
		if err != nil {
			t.Fatalf("Load(behavior=%s) error = %v", tt.behavior, err)
		}
		got, err := cfg.PostBuild.Policy()
		if err != nil {
			t.Errorf("Policy(%s) error = %v", tt.behavior, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Policy(%s) = %s, want %s", tt.behavior, got, tt.want)
		}
	}

	cfg, err := Load(writeTempConfig(t, "[postbuild]\nbehavior = 7\n"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := cfg.PostBuild.Policy(); err == nil {
		t.Error("Policy() accepted behavior code 7")
	}
}

func TestPostBuild_ScriptFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "post.txt"), []byte("addWarningBadge careful\n"), 0644); err != nil {
		t.Fatal(err)
	}
	configPath := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(configPath, []byte("[postbuild]\nscript_file = \"post.txt\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatal(err)
	}
	text, err := cfg.PostBuild.ScriptText()
	if err != nil {
		t.Fatalf("ScriptText() error = %v", err)
	}
	if text != "addWarningBadge careful\n" {
		t.Errorf("ScriptText() = %q", text)
	}

	cfg.PostBuild.Script = "inline"
	if _, err := cfg.PostBuild.ScriptText(); err == nil {
		t.Error("ScriptText() accepted both script and script_file")
	}
}

func TestPostBuild_ClasspathRelativeToConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")
	content := `[postbuild]
classpath = ["libs/common.txt", "/abs/lib.txt", "file:///srv/lib.txt"]
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatal(err)
	}

	entries := cfg.PostBuild.ClasspathEntries()
	want := []string{filepath.Join(dir, "libs", "common.txt"), "/abs/lib.txt", "file:///srv/lib.txt"}
	if len(entries) != len(want) {
		t.Fatalf("ClasspathEntries() = %+v", entries)
	}
	for i, w := range want {
		if entries[i].URL != w {
			t.Errorf("entry %d = %q, want %q", i, entries[i].URL, w)
		}
	}
}

func TestPostBuild_InvalidTimeout(t *testing.T) {
	p := PostBuildConfig{Timeout: "soon"}
	if _, err := p.TimeoutDuration(); err == nil {
		t.Error("TimeoutDuration() accepted an invalid duration")
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	tests := []struct {
		input string
		want  string
	}{
		{"~/test", filepath.Join(home, "test")},
		{"/absolute/path", "/absolute/path"},
		{"relative", "relative"},
	}

	for _, tt := range tests {
		got := ExpandPath(tt.input)
		if got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFindLocalConfig(t *testing.T) {
	// Create a temp directory structure
	root := t.TempDir()
	subdir := filepath.Join(root, "sub", "dir")
	if err := os.MkdirAll(subdir, 0755); err != nil {
		t.Fatal(err)
	}

	// Create local config in root
	localConfig := filepath.Join(root, LocalConfigName)
	if err := os.WriteFile(localConfig, []byte("[general]\nrecords_dir = \"/local\""), 0644); err != nil {
		t.Fatal(err)
	}

	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	if err := os.Chdir(subdir); err != nil {
		t.Fatal(err)
	}

	// Should find config in parent
	found, _ := filepath.EvalSymlinks(FindLocalConfig())
	want, _ := filepath.EvalSymlinks(localConfig)
	if found != want {
		t.Errorf("FindLocalConfig() = %q, want %q", found, want)
	}
}

func TestFindLocalConfig_NotFound(t *testing.T) {
	root := t.TempDir()

	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	if err := os.Chdir(root); err != nil {
		t.Fatal(err)
	}

	found := FindLocalConfig()
	if found != "" {
		t.Errorf("FindLocalConfig() = %q, want empty string", found)
	}
}

func TestLoadWithLocalFallback_ExplicitPath(t *testing.T) {
	path := writeTempConfig(t, "[general]\nrecords_dir = \"/explicit\"\n")

	cfg, err := LoadWithLocalFallback(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.General.RecordsDir != "/explicit" {
		t.Errorf("RecordsDir = %q, want /explicit", cfg.General.RecordsDir)
	}
}

func TestLoadWithLocalFallback_LocalConfig(t *testing.T) {
	root := t.TempDir()
	localConfig := filepath.Join(root, LocalConfigName)

	if err := os.WriteFile(localConfig, []byte("[general]\nrecords_dir = \"/from-local\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	if err := os.Chdir(root); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadWithLocalFallback("")
	if err != nil {
		t.Fatal(err)
	}

	if cfg.General.RecordsDir != "/from-local" {
		t.Errorf("RecordsDir = %q, want /from-local", cfg.General.RecordsDir)
	}
}

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}
