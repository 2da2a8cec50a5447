// Package render turns an article into notification text using named,
// file-backed templates.
//
// Template syntax is {{var}} substitution plus single-level
// {{#if var}}...{{/if}} blocks. Blocks are resolved first from the raw
// context, then variables are substituted; this keeps conditional
// evaluation independent of substitution order. Nested conditional blocks
// are not supported: the scanner matches each {{#if}} to the nearest
// {{/if}}.
package render

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"blogbot/internal/devto"
	"blogbot/pkg/logx"
)

var (
	condRe = regexp.MustCompile(`(?s)\{\{#if ([a-zA-Z_]+)\}\}(.*?)\{\{/if\}\}`)
	varRe  = regexp.MustCompile(`\{\{([a-zA-Z_]+)\}\}`)
)

// Fallback is the hardcoded minimal pattern used when the requested
// template cannot be found at all.
func Fallback(a *devto.Article) string {
	return fmt.Sprintf(`New article published: ["%s"](%s)`, a.Title, a.URL)
}

// Options gate the extra sections appended in the inline-pattern path.
type Options struct {
	IncludeTags        bool
	IncludeReadingTime bool
}

// Context builds the substitution mapping for one article. Empty values
// stay in the map so conditionals can test them.
func Context(a *devto.Article) map[string]string {
	ctx := map[string]string{
		"title":        a.Title,
		"url":          a.URL,
		"description":  a.Description,
		"published_at": a.PublishedAt,
		"tags":         joinTags(a.TagList),
		"user":         a.User.Name,
		"username":     a.User.Username,
		"cover_image":  a.CoverImage,

		"published_date": "",
		"published_time": "",
		"reading_time":   "",
	}
	if a.ReadingTimeMinutes > 0 {
		ctx["reading_time"] = strconv.Itoa(a.ReadingTimeMinutes)
	}
	if a.PublishedAt != "" {
		if t, err := time.Parse(time.RFC3339, a.PublishedAt); err == nil {
			ctx["published_date"] = t.Format("January 02, 2006")
			ctx["published_time"] = t.Format("03:04 PM")
		}
	}
	return ctx
}

func joinTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ReplaceAll(tag, " ", "")
		if tag == "" {
			continue
		}
		out = append(out, "#"+tag)
	}
	return strings.Join(out, " ")
}

// Expand renders a template pattern against a context: conditionals first,
// then variable substitution. Variables with empty values keep their token
// verbatim, matching the documented contract. No escaping is applied.
func Expand(pattern string, ctx map[string]string) string {
	out := condRe.ReplaceAllStringFunc(pattern, func(block string) string {
		m := condRe.FindStringSubmatch(block)
		if m == nil {
			return block
		}
		if ctx[m[1]] != "" {
			return m[2]
		}
		return ""
	})

	return varRe.ReplaceAllStringFunc(out, func(token string) string {
		key := token[2 : len(token)-2]
		if v, ok := ctx[key]; ok && v != "" {
			return v
		}
		return token
	})
}

// Inline renders a free-form pattern from config (message_template) and
// appends the option-gated sections, the way the simpler notification
// scripts formatted their messages.
func Inline(pattern string, a *devto.Article, opts Options) string {
	msg := Expand(pattern, Context(a))

	if opts.IncludeTags && len(a.TagList) > 0 {
		msg += "\n\nTags: " + joinTags(a.TagList)
	}
	if opts.IncludeReadingTime && a.ReadingTimeMinutes > 0 {
		msg += fmt.Sprintf("\n\nReading time: %d min", a.ReadingTimeMinutes)
	}
	return msg
}

// Engine resolves named templates from a directory.
type Engine struct {
	dir string
	log logx.Logger
}

func NewEngine(dir string, log logx.Logger) *Engine {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Engine{dir: dir, log: log}
}

// Render produces the final message text for an article. When the named
// template is missing the hardcoded minimal pattern is used instead.
func (e *Engine) Render(a *devto.Article, name string) string {
	templates, err := e.Load()
	if err != nil {
		e.log.Warn("template load failed; using fallback", logx.Err(err))
		return Fallback(a)
	}
	t, ok := templates[name]
	if !ok {
		e.log.Warn("template not found; using fallback", logx.String("template", name))
		return Fallback(a)
	}
	return Expand(t.Template, Context(a))
}
