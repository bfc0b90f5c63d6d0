// Package scaffold provides embedded template files for the postsite CLI
// project scaffolding tool.
package scaffold

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"
	"time"
)

// Templates contains all scaffold template files.
// Files use Go text/template syntax and have a .tmpl suffix.
//
//go:embed all:templates
var Templates embed.FS

const root = "templates"

// Data holds the template variables passed to every scaffold template.
type Data struct {
	ProjectName string
	SiteName    string
}

// Create writes a new site into dir, which must not exist yet. Post
// templates under _posts get date as their filename prefix. It returns the
// created files, relative to dir.
func Create(dir string, data Data, date time.Time) ([]string, error) {
	if _, err := os.Stat(dir); err == nil {
		return nil, fmt.Errorf("directory %q already exists", dir)
	}
	var created []string
	err := fs.WalkDir(Templates, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(p, root), "/")
		if rel == "" {
			return os.MkdirAll(dir, 0o755)
		}
		rel = outputName(rel, date)
		outPath := filepath.Join(dir, filepath.FromSlash(rel))
		if d.IsDir() {
			return os.MkdirAll(outPath, 0o755)
		}

		src, err := Templates.ReadFile(p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}
		tmpl, err := template.New(path.Base(p)).Parse(string(src))
		if err != nil {
			return fmt.Errorf("parse template %s: %w", p, err)
		}
		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			return err
		}
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create %s: %w", outPath, err)
		}
		defer f.Close()
		if err := tmpl.Execute(f, data); err != nil {
			return fmt.Errorf("execute template %s: %w", p, err)
		}
		created = append(created, rel)
		return nil
	})
	return created, err
}

// outputName strips .tmpl, turns gitignore into .gitignore and dates posts.
func outputName(rel string, date time.Time) string {
	rel = strings.TrimSuffix(rel, ".tmpl")
	dir, base := path.Split(rel)
	switch {
	case base == "gitignore":
		base = ".gitignore"
	case dir == "_posts/":
		base = date.Format("2006-01-02") + "-" + base
	}
	return dir + base
}
