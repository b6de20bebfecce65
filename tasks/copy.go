package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adnsv/sitepipe/model"
)

// Copy transfers the final html, stylesheets, scripts and fonts into the
// output directory, keeping their paths relative to copy.base.
func (p *Pipeline) Copy(ctx context.Context) error {
	cfg := p.prj.Copy
	srcs, err := model.Expand(p.prj.Root, cfg.Sources, cfg.Base)
	if err != nil {
		return err
	}
	dist := p.prj.Path(p.prj.Dist)
	for _, src := range srcs {
		if err := ctx.Err(); err != nil {
			return err
		}
		dst := filepath.Join(dist, filepath.FromSlash(src.Rel))
		if dst == dist || !contains(dist, dst) {
			return fmt.Errorf("%w: copy source %s is outside copy.base %q", model.ErrInvalidConfig, p.rel(src.Path), cfg.Base)
		}
		buf, err := os.ReadFile(src.Path)
		if err != nil {
			return err
		}
		if err := p.write(dst, buf); err != nil {
			return err
		}
	}
	p.log.Info("copied", "files", len(srcs), "dest", p.rel(dist))
	return nil
}
