package scaffold

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// leftoverToken finds replacement tokens that survived substitution.
var leftoverToken = regexp.MustCompile(`\$\([A-Za-z_][A-Za-z0-9_]*\)`)

// Result holds the outcome of a scaffold generation.
type Result struct {
	OutputDir string
	Files     []string
	Warnings  []string
}

// Options tune Generate.
type Options struct {
	// Transform, when set, rewrites each file's content before it is written.
	Transform func(name, content string) string
	// AllowExisting permits writing into a non-empty directory. Files that
	// already exist are still never overwritten.
	AllowExisting bool
}

// Generate writes files (relative name to content) under outputDir, in name
// order. It refuses a non-empty outputDir unless opts.AllowExisting is set.
func Generate(fsys afero.Fs, outputDir string, files map[string]string, opts Options) (*Result, error) {
	if err := fsys.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	// Check for existing files to prevent accidental overwrites.
	existingEntries, err := afero.ReadDir(fsys, outputDir)
	if err == nil && len(existingEntries) > 0 && !opts.AllowExisting {
		return nil, fmt.Errorf("output directory %s is not empty; remove existing files first", outputDir)
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	result := &Result{
		OutputDir: outputDir,
	}

	for _, name := range names {
		rel := filepath.Clean(filepath.FromSlash(name))
		if filepath.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
			return nil, fmt.Errorf("template file %q escapes the output directory", name)
		}
		outPath := filepath.Join(outputDir, rel)

		if exists, _ := afero.Exists(fsys, outPath); exists {
			return nil, fmt.Errorf("%s already exists", outPath)
		}
		if err := fsys.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
			return nil, fmt.Errorf("creating directory for %s: %w", name, err)
		}

		content := files[name]
		if opts.Transform != nil {
			content = opts.Transform(name, content)
		}
		if err := afero.WriteFile(fsys, outPath, []byte(content), 0644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", outPath, err)
		}
		result.Files = append(result.Files, filepath.ToSlash(rel))

		if tokens := leftoverToken.FindAllString(content, -1); len(tokens) > 0 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s: unresolved tokens %s", filepath.ToSlash(rel), strings.Join(unique(tokens), ", ")))
		}
	}

	return result, nil
}

func unique(items []string) []string {
	seen := make(map[string]bool, len(items))
	var out []string
	for _, it := range items {
		if !seen[it] {
			seen[it] = true
			out = append(out, it)
		}
	}
	return out
}
