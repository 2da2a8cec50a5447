package render

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	yaml "go.yaml.in/yaml/v3"

	"blogbot/pkg/logx"
)

// Template is one named message pattern. A template file is valid only if
// both fields are present and non-empty; anything else is skipped.
type Template struct {
	Name     string `json:"name" yaml:"name"`
	Template string `json:"template" yaml:"template"`
}

// DefaultName is the template synthesized on first use.
const DefaultName = "default"

const defaultTemplateText = "New article published: [\"{{title}}\"]({{url}})\n\n" +
	"{{#if tags}}Tags: {{tags}}{{/if}}" +
	"{{#if reading_time}}\n\nReading time: {{reading_time}} min{{/if}}"

// Load reads every template file in the engine directory, keyed by file
// name stem. The directory and a default template are created when absent.
func (e *Engine) Load() (map[string]Template, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return nil, err
	}
	if err := e.ensureDefault(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(e.dir)
	if err != nil {
		return nil, err
	}

	templates := map[string]Template{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".json" && ext != ".yaml" && ext != ".yml" {
			continue
		}

		b, err := os.ReadFile(filepath.Join(e.dir, name))
		if err != nil {
			e.log.Warn("template unreadable; skipping", logx.String("file", name), logx.Err(err))
			continue
		}

		// YAML is a superset of JSON, so one decoder covers both formats.
		var t Template
		if err := yaml.Unmarshal(b, &t); err != nil {
			e.log.Warn("template malformed; skipping", logx.String("file", name), logx.Err(err))
			continue
		}
		if strings.TrimSpace(t.Name) == "" || strings.TrimSpace(t.Template) == "" {
			e.log.Warn("template missing name or template field; skipping", logx.String("file", name))
			continue
		}

		templates[strings.TrimSuffix(name, filepath.Ext(name))] = t
	}
	return templates, nil
}

// ensureDefault writes the built-in default template if no default.json
// exists yet, so a fresh deployment renders something sensible.
func (e *Engine) ensureDefault() error {
	path := filepath.Join(e.dir, DefaultName+".json")
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}

	b, err := json.MarshalIndent(Template{
		Name:     "Default Template",
		Template: defaultTemplateText,
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
