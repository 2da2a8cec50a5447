package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"blogbot/internal/devto"
	"blogbot/pkg/logx"
)

func sampleArticle() *devto.Article {
	return &devto.Article{
		ID:                 42,
		Title:              "Go Patterns",
		URL:                "https://dev.to/alice/go-patterns",
		Description:        "A tour of patterns.",
		PublishedAt:        "2024-06-15T14:30:00Z",
		TagList:            []string{"go", "web dev"},
		ReadingTimeMinutes: 7,
		User: devto.User{
			Name:     "Alice",
			Username: "alice",
		},
	}
}

func TestContextFields(t *testing.T) {
	ctx := Context(sampleArticle())

	if got := ctx["tags"]; got != "#go #webdev" {
		t.Fatalf("tags = %q", got)
	}
	if got := ctx["published_date"]; got != "June 15, 2024" {
		t.Fatalf("published_date = %q", got)
	}
	if got := ctx["published_time"]; got != "02:30 PM" {
		t.Fatalf("published_time = %q", got)
	}
	if got := ctx["reading_time"]; got != "7" {
		t.Fatalf("reading_time = %q", got)
	}
}

func TestContextEmptyFieldsStay(t *testing.T) {
	ctx := Context(&devto.Article{Title: "t", URL: "u"})

	for _, key := range []string{"tags", "reading_time", "published_date", "cover_image"} {
		v, ok := ctx[key]
		if !ok {
			t.Fatalf("key %q missing from context", key)
		}
		if v != "" {
			t.Fatalf("key %q = %q, want empty", key, v)
		}
	}
}

func TestExpandConditionalKept(t *testing.T) {
	got := Expand("{{title}}{{#if tags}} | {{tags}}{{/if}}", map[string]string{
		"title": "Hello",
		"tags":  "#go",
	})
	if got != "Hello | #go" {
		t.Fatalf("Expand = %q", got)
	}
}

func TestExpandConditionalRemoved(t *testing.T) {
	got := Expand("{{title}}{{#if tags}} | {{tags}}{{/if}}", map[string]string{
		"title": "Hello",
		"tags":  "",
	})
	if got != "Hello" {
		t.Fatalf("Expand = %q", got)
	}
}

func TestExpandEmptyVarKeepsToken(t *testing.T) {
	got := Expand("by {{user}}", map[string]string{"user": ""})
	if got != "by {{user}}" {
		t.Fatalf("Expand = %q", got)
	}
}

func TestExpandMultilineConditional(t *testing.T) {
	pattern := "head\n{{#if description}}\n{{description}}\n{{/if}}\ntail"
	got := Expand(pattern, map[string]string{"description": "body"})
	if got != "head\n\nbody\n\ntail" {
		t.Fatalf("Expand = %q", got)
	}
}

func TestInlineAppendsSections(t *testing.T) {
	a := sampleArticle()
	got := Inline("{{title}}", a, Options{IncludeTags: true, IncludeReadingTime: true})

	if !strings.Contains(got, "Tags: #go #webdev") {
		t.Fatalf("missing tags section: %q", got)
	}
	if !strings.Contains(got, "Reading time: 7 min") {
		t.Fatalf("missing reading time section: %q", got)
	}

	plain := Inline("{{title}}", a, Options{})
	if plain != "Go Patterns" {
		t.Fatalf("options off, got %q", plain)
	}
}

func TestEngineSynthesizesDefault(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "templates")
	e := NewEngine(dir, logx.Nop())

	templates, err := e.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := templates[DefaultName]; !ok {
		t.Fatalf("default template not synthesized, got %v", templates)
	}
	if _, err := os.Stat(filepath.Join(dir, "default.json")); err != nil {
		t.Fatalf("default.json not written: %v", err)
	}
}

func TestEngineSkipsInvalidFiles(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	write("broken.json", "{not json")
	write("empty.json", `{"name": "Empty", "template": ""}`)
	write("short.yaml", "name: Short\ntemplate: \"{{title}}\"\n")
	write("notes.txt", "ignored")

	templates, err := NewEngine(dir, logx.Nop()).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := templates["broken"]; ok {
		t.Fatalf("malformed template was not skipped")
	}
	if _, ok := templates["empty"]; ok {
		t.Fatalf("template with empty pattern was not skipped")
	}
	if got := templates["short"].Template; got != "{{title}}" {
		t.Fatalf("yaml template = %q", got)
	}
}

func TestRenderFallbackWhenMissing(t *testing.T) {
	a := sampleArticle()
	got := NewEngine(t.TempDir(), logx.Nop()).Render(a, "no-such-template")
	want := `New article published: ["Go Patterns"](https://dev.to/alice/go-patterns)`
	if got != want {
		t.Fatalf("Render = %q, want %q", got, want)
	}
}

func TestRenderDefaultTemplate(t *testing.T) {
	got := NewEngine(t.TempDir(), logx.Nop()).Render(sampleArticle(), DefaultName)

	if !strings.Contains(got, `["Go Patterns"](https://dev.to/alice/go-patterns)`) {
		t.Fatalf("title link missing: %q", got)
	}
	if !strings.Contains(got, "Tags: #go #webdev") {
		t.Fatalf("tags block missing: %q", got)
	}
	if !strings.Contains(got, "Reading time: 7 min") {
		t.Fatalf("reading time block missing: %q", got)
	}
}

func TestRenderDefaultTemplateNoTags(t *testing.T) {
	a := sampleArticle()
	a.TagList = nil
	a.ReadingTimeMinutes = 0

	got := NewEngine(t.TempDir(), logx.Nop()).Render(a, DefaultName)
	if strings.Contains(got, "Tags:") {
		t.Fatalf("tags block rendered without tags: %q", got)
	}
	if strings.Contains(got, "Reading time:") {
		t.Fatalf("reading time block rendered without value: %q", got)
	}
}
