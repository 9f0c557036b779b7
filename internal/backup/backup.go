package backup

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"github.com/Masterminds/semver/v3"

	"github.com/funcscaffold/funcscaffold/internal/templates"
)

//go:embed bundles
var bundlesFS embed.FS

// ErrNoBundle is returned when no bundled release serves the request.
var ErrNoBundle = errors.New("no backup template bundle")

// Loader reads bundles from a file system laid out as
// <schema>/<version>/<document>.json.
type Loader struct {
	fsys fs.FS
}

// Embedded returns a Loader over the bundles compiled into the binary.
func Embedded() *Loader {
	sub, err := fs.Sub(bundlesFS, "bundles")
	if err != nil {
		panic(fmt.Sprintf("backup: embedded bundles: %v", err))
	}
	return &Loader{fsys: sub}
}

// NewLoader returns a Loader over fsys.
func NewLoader(fsys fs.FS) *Loader {
	return &Loader{fsys: fsys}
}

// Versions returns the bundled release versions for schema, highest first.
func (l *Loader) Versions(schema templates.SchemaVersion) ([]*semver.Version, error) {
	entries, err := fs.ReadDir(l.fsys, string(schema))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading backup bundles: %w", err)
	}

	var versions []*semver.Version
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		v, err := semver.NewVersion(e.Name())
		if err != nil {
			continue
		}
		versions = append(versions, v)
	}
	sort.Sort(sort.Reverse(semver.Collection(versions)))
	return versions, nil
}

// Load returns the highest bundled release of schema that satisfies
// runtimeVersion ("~4") as a semver constraint.
func (l *Loader) Load(schema templates.SchemaVersion, runtimeVersion string) (*templates.Bundle, error) {
	constraint, err := semver.NewConstraint(runtimeVersion)
	if err != nil {
		return nil, fmt.Errorf("parsing runtime version %q: %w", runtimeVersion, err)
	}

	versions, err := l.Versions(schema)
	if err != nil {
		return nil, err
	}
	for _, v := range versions {
		if constraint.Check(v) {
			return l.read(schema, v.Original())
		}
	}
	return nil, fmt.Errorf("%s templates for runtime %s: %w", schema, runtimeVersion, ErrNoBundle)
}

// LoadVersion returns the bundle stored for one exact release version.
func (l *Loader) LoadVersion(schema templates.SchemaVersion, version string) (*templates.Bundle, error) {
	return l.read(schema, version)
}

func (l *Loader) read(schema templates.SchemaVersion, version string) (*templates.Bundle, error) {
	bundle := &templates.Bundle{
		Schema:    schema,
		Version:   version,
		Documents: make(map[string][]byte),
	}
	dir := path.Join(string(schema), version)
	for _, name := range templates.DocumentNames(schema) {
		data, err := fs.ReadFile(l.fsys, path.Join(dir, name+".json"))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && name != templates.DocTemplates {
				continue
			}
			return nil, fmt.Errorf("reading backup %s: %w", path.Join(dir, name), err)
		}
		bundle.Documents[name] = data
	}
	return bundle, nil
}
