package config

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/AbdelazizMoustafa10m/critpath/internal/logging"
)

//go:embed all:templates
var templateFS embed.FS

const templatesRoot = "templates"

// DefaultTemplate is the scaffold used by "critpath init" without arguments.
const DefaultTemplate = "starter"

// TemplateVars are available to .tmpl files as {{.ProjectID}} and so on.
type TemplateVars struct {
	ProjectID    string
	ProjectName  string
	StartDate    string // YYYY-MM-DD
	CalendarMode string
}

// ListTemplates returns the names of the embedded scaffolds.
func ListTemplates() ([]string, error) {
	entries, err := templateFS.ReadDir(templatesRoot)
	if err != nil {
		return nil, fmt.Errorf("reading templates directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// TemplateExists reports whether an embedded scaffold has the given name.
func TemplateExists(name string) bool {
	info, err := fs.Stat(templateFS, templatesRoot+"/"+name)
	return err == nil && info.IsDir()
}

// RenderTemplate writes the named scaffold into destDir and returns the
// paths it wrote. Files ending in ".tmpl" are executed with vars and lose
// the suffix; other files are copied as they are. Existing files are kept
// unless force is set.
func RenderTemplate(name, destDir string, vars TemplateVars, force bool) ([]string, error) {
	if !TemplateExists(name) {
		return nil, fmt.Errorf("template %q not found", name)
	}

	logger := logging.New("config")
	root := templatesRoot + "/" + name
	var created []string

	walkErr := fs.WalkDir(templateFS, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walking template %s: %w", p, err)
		}
		if d.IsDir() {
			return nil
		}

		rel := strings.TrimPrefix(p, root+"/")
		isTmpl := path.Ext(rel) == ".tmpl"
		rel = strings.TrimSuffix(rel, ".tmpl")
		if isTmpl && strings.Contains(rel, "{{") {
			rendered, err := execute(p, rel, vars)
			if err != nil {
				return err
			}
			rel = string(rendered)
		}
		dest := filepath.Join(destDir, filepath.FromSlash(rel))

		if _, statErr := os.Stat(dest); statErr == nil && !force {
			logger.Debug("skipping existing file", "path", dest)
			return nil
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return fmt.Errorf("creating directory for %s: %w", dest, err)
		}

		content, err := templateFS.ReadFile(p)
		if err != nil {
			return fmt.Errorf("reading embedded file %s: %w", p, err)
		}
		if isTmpl {
			if content, err = execute(p, string(content), vars); err != nil {
				return err
			}
		}

		if err := os.WriteFile(dest, content, 0o644); err != nil {
			return fmt.Errorf("writing file %s: %w", dest, err)
		}
		logger.Debug("created template file", "path", dest)
		created = append(created, dest)
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return created, nil
}

func execute(name, text string, vars TemplateVars) ([]byte, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return nil, fmt.Errorf("executing template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
