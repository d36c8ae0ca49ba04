// Package scaffold lays out a new folio site directory: a config file, an
// env file carrying a fresh session secret, an editable catalog and an empty
// public/ directory for static assets.
package scaffold

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

// Templates contains all scaffold template files.
// Files use Go text/template syntax and have a .tmpl suffix.
//
//go:embed all:templates
var Templates embed.FS

// CatalogFile is the name the starter catalog is written under.
const CatalogFile = "content.yaml"

// Data holds the template variables passed to every scaffold template.
type Data struct {
	SiteName      string
	URL           string
	SessionSecret string
}

// Write creates dir and fills it from the templates, followed by catalog
// as CatalogFile. Each created path is reported to out. An existing dir is
// an error.
func Write(dir string, data Data, catalog []byte, out io.Writer) error {
	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("directory %q already exists", dir)
	}

	root := "templates"
	err := fs.WalkDir(Templates, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		outPath := strings.TrimSuffix(filepath.Join(dir, relPath), ".tmpl")
		// Rename dotenv to .env; embed skips dotfiles without all:.
		if filepath.Base(outPath) == "dotenv" {
			outPath = filepath.Join(filepath.Dir(outPath), ".env")
		}

		if d.IsDir() {
			return os.MkdirAll(outPath, 0o755)
		}

		src, err := Templates.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		tmpl, err := template.New(filepath.Base(path)).Parse(string(src))
		if err != nil {
			return fmt.Errorf("parse template %s: %w", path, err)
		}

		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create %s: %w", outPath, err)
		}
		defer f.Close()

		if err := tmpl.Execute(f, data); err != nil {
			return fmt.Errorf("execute template %s: %w", path, err)
		}
		fmt.Fprintf(out, "  created %s\n", outPath)
		return nil
	})
	if err != nil {
		return err
	}

	catalogPath := filepath.Join(dir, CatalogFile)
	if err := os.WriteFile(catalogPath, catalog, 0o644); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	fmt.Fprintf(out, "  created %s\n", catalogPath)
	return nil
}
