package project

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// LoadFile reads a project from a YAML (.yaml, .yml), JSON (.json) or TOML
// (.toml) file. A missing project ID defaults to the file name without its
// extension, and dependencies without an ID get a generated one.
func LoadFile(path string) (Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Project{}, fmt.Errorf("reading project file: %w", err)
	}

	var p Project
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &p)
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&p)
	case ".toml":
		var md toml.MetaData
		md, err = toml.Decode(string(data), &p)
		if err == nil {
			if undecoded := md.Undecoded(); len(undecoded) > 0 {
				err = fmt.Errorf("unknown key %q", undecoded[0].String())
			}
		}
	default:
		return Project{}, fmt.Errorf("loading %s: unsupported project file extension %q", path, ext)
	}
	if err != nil {
		return Project{}, fmt.Errorf("decoding project %s: %w", path, err)
	}

	if p.ID == "" {
		p.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	for i := range p.Dependencies {
		if p.Dependencies[i].ID == "" {
			p.Dependencies[i].ID = uuid.NewString()
		}
	}
	return p, nil
}

// LoadGlob loads every project file matching a doublestar pattern such as
// "projects/**/*.{yaml,yml,json,toml}". Files are read in lexical order;
// two files declaring the same project ID are an error.
func LoadGlob(pattern string) ([]Project, error) {
	paths, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("matching %q: %w", pattern, err)
	}
	sort.Strings(paths)

	projects := make([]Project, 0, len(paths))
	from := make(map[string]string, len(paths))
	for _, path := range paths {
		p, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		if prev, dup := from[p.ID]; dup {
			return nil, fmt.Errorf("project %q is declared in both %s and %s", p.ID, prev, path)
		}
		from[p.ID] = path
		projects = append(projects, p)
	}
	return projects, nil
}
