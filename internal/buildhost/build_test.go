package buildhost

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/hochfrequenz/build-annotator/internal/domain"
)

func TestNewBuild_CopiesEnv(t *testing.T) {
	env := map[string]string{"BRANCH": "main"}
	b := NewBuild(BuildSpec{Job: "app", Number: 3, Env: env})
	env["BRANCH"] = "changed"

	if v, ok := b.Getenv("BRANCH"); !ok || v != "main" {
		t.Errorf("Getenv(BRANCH) = %q, %v, want main, true", v, ok)
	}
	if _, ok := b.Getenv("MISSING"); ok {
		t.Error("Getenv(MISSING) reported a value")
	}
	if got := domain.BuildKey(b); got != "app#3" {
		t.Errorf("BuildKey = %q, want app#3", got)
	}
}

func TestNewAggregate(t *testing.T) {
	parent := NewAggregate(BuildSpec{
		Job:    "matrix",
		Number: 7,
		Env:    map[string]string{"CI": "true"},
	}, "jdk", []string{"8", "17"})

	if !parent.IsA(domain.TagAggregate) || !parent.IsAggregate() {
		t.Error("parent not tagged as aggregate")
	}
	children := parent.Children()
	if len(children) != 2 {
		t.Fatalf("got %d children, want 2", len(children))
	}

	child := children[1]
	if child.Job() != "matrix/jdk=17" {
		t.Errorf("child Job() = %q, want matrix/jdk=17", child.Job())
	}
	if child.Number() != 7 {
		t.Errorf("child Number() = %d, want 7", child.Number())
	}
	if !child.IsA(domain.TagChild) || child.IsA(domain.TagAggregate) {
		t.Error("child tags wrong")
	}
	if v, _ := child.Getenv("jdk"); v != "17" {
		t.Errorf("child jdk = %q, want 17", v)
	}
	if v, _ := child.Getenv("CI"); v != "true" {
		t.Errorf("child did not inherit CI, got %q", v)
	}
}

func TestBuild_AnnotationsAreCopied(t *testing.T) {
	b := NewBuild(BuildSpec{Job: "app", Number: 1})
	badges := []domain.Badge{{Kind: domain.BadgeShortText, Text: "A"}}
	b.SetAnnotations(badges, nil)
	badges[0].Text = "mutated"

	got, summaries := b.Annotations()
	if got[0].Text != "A" {
		t.Errorf("badge text = %q, want A", got[0].Text)
	}
	if len(summaries) != 0 {
		t.Errorf("summaries = %v, want none", summaries)
	}
}

func TestNewAggregate_ChildrenShareEcho(t *testing.T) {
	var echo bytes.Buffer
	parent := NewAggregate(BuildSpec{Job: "matrix", Number: 1, Echo: &echo}, "os", []string{"linux", "mac", "win"})

	var wg sync.WaitGroup
	for _, child := range parent.Children() {
		wg.Add(1)
		go func(c *Build) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				fmt.Fprintf(c.Console(), "%s %d\n", c.Job(), i)
			}
		}(child)
	}
	wg.Wait()

	if got := strings.Count(echo.String(), "\n"); got != 150 {
		t.Errorf("echoed %d lines, want 150", got)
	}
}
