package model

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// FileMatch is a file selected by a glob.
type FileMatch struct {
	Path string // absolute
	Rel  string // slash separated, relative to the match base
}

// IsGlob reports whether pattern contains glob syntax.
func IsGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// Expand selects files under root. Patterns prefixed with "!" exclude. Each
// result's Rel is relative to base, or to the static prefix of the pattern
// that selected it when base is empty. Results keep pattern order; a pattern
// without glob syntax must name an existing file.
func Expand(root string, patterns []string, base string) ([]FileMatch, error) {
	var includes, excludes []string
	for _, p := range patterns {
		if strings.HasPrefix(p, "!") {
			excludes = append(excludes, filepath.ToSlash(path.Clean(p[1:])))
		} else if p != "" {
			includes = append(includes, p)
		}
	}

	fsys := os.DirFS(root)
	seen := map[string]struct{}{}
	ret := []FileMatch{}

	add := func(relToRoot, abs, patBase string) error {
		if excluded(excludes, relToRoot) {
			return nil
		}
		if _, ok := seen[abs]; ok {
			return nil
		}
		seen[abs] = struct{}{}

		b := base
		if b == "" {
			b = patBase
		}
		rel, err := filepath.Rel(normalizePath(root, b), abs)
		if err != nil {
			return err
		}
		ret = append(ret, FileMatch{Path: abs, Rel: filepath.ToSlash(rel)})
		return nil
	}

	for _, p := range includes {
		if !IsGlob(p) {
			abs := normalizePath(root, p)
			st, err := os.Stat(abs)
			if err != nil {
				return nil, fmt.Errorf("file not found with singular glob %q: %w", p, err)
			}
			if st.IsDir() {
				return nil, fmt.Errorf("%q points to a directory instead of a file", p)
			}
			if err := add(relToRoot(root, abs), abs, filepath.Dir(p)); err != nil {
				return nil, err
			}
			continue
		}

		sp := path.Clean(filepath.ToSlash(p))
		patBase, _ := doublestar.SplitPattern(sp)
		matches, err := doublestar.Glob(fsys, sp, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", p, err)
		}
		for _, m := range matches {
			if err := add(m, filepath.Join(root, filepath.FromSlash(m)), patBase); err != nil {
				return nil, err
			}
		}
	}
	return ret, nil
}

// Match reports whether the slash separated path rel is selected by patterns.
func Match(patterns []string, rel string) bool {
	rel = filepath.ToSlash(rel)
	var excludes []string
	hit := false
	for _, p := range patterns {
		if strings.HasPrefix(p, "!") {
			excludes = append(excludes, filepath.ToSlash(path.Clean(p[1:])))
			continue
		}
		if ok, _ := doublestar.Match(filepath.ToSlash(path.Clean(p)), rel); ok {
			hit = true
		}
	}
	return hit && !excluded(excludes, rel)
}

// Bases returns the static directory prefixes of the non-excluding patterns.
func Bases(patterns []string) []string {
	ret := []string{}
	seen := map[string]struct{}{}
	for _, p := range patterns {
		if strings.HasPrefix(p, "!") || p == "" {
			continue
		}
		b, _ := doublestar.SplitPattern(filepath.ToSlash(path.Clean(p)))
		if !IsGlob(p) {
			b = path.Dir(filepath.ToSlash(path.Clean(p)))
		}
		if _, ok := seen[b]; !ok {
			seen[b] = struct{}{}
			ret = append(ret, b)
		}
	}
	return ret
}

func excluded(excludes []string, rel string) bool {
	for _, x := range excludes {
		if ok, _ := doublestar.Match(x, rel); ok {
			return true
		}
	}
	return false
}

func relToRoot(root, abs string) string {
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return abs
	}
	return filepath.ToSlash(rel)
}
