package model

import (
	"path/filepath"
)

// Path resolves fn against the project root.
func (prj *Project) Path(fn string) string {
	return normalizePath(prj.Root, fn)
}

func normalizePath(refdir string, fn string) string {
	if fn == "" {
		return refdir
	}
	if !filepath.IsAbs(fn) {
		fn = filepath.Join(refdir, fn)
	}
	return filepath.Clean(fn)
}
