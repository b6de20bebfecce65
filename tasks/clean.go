package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Clean removes the output directory. It refuses to remove the project root,
// the source directory, or a directory containing either.
func (p *Pipeline) Clean(ctx context.Context) error {
	dist := p.prj.Path(p.prj.Dist)
	for _, keep := range []string{p.prj.Root, p.prj.Path(p.prj.App)} {
		if contains(dist, keep) {
			return fmt.Errorf("refusing to remove %s: it contains %s", dist, keep)
		}
	}
	p.log.Debug("removing", "dir", p.rel(dist))
	return os.RemoveAll(dist)
}

// contains reports whether dir is sub or one of its ancestors.
func contains(dir, sub string) bool {
	rel, err := filepath.Rel(dir, sub)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
