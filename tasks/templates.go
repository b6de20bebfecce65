package tasks

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/adnsv/sitepipe/model"
	"github.com/flosch/pongo2/v6"
)

// Templates renders template pages into html next to the sources. Includes
// and extends resolve against templates.search-path. Project definitions are
// passed as template data, with "page" set to the page name.
func (p *Pipeline) Templates(ctx context.Context) error {
	cfg := p.prj.Templates
	if !cfg.Enabled {
		p.log.Info("templating disabled for this variant", "variant", p.prj.Variant)
		return nil
	}

	loaders := []pongo2.TemplateLoader{}
	for _, sp := range cfg.SearchPath {
		loader, err := pongo2.NewLocalFileSystemLoader(p.prj.Path(sp))
		if err != nil {
			return fmt.Errorf("template search path %q: %w", sp, err)
		}
		loaders = append(loaders, loader)
	}
	// a fresh set per run, so edited includes are never served from cache
	set := pongo2.NewSet("sitepipe", loaders...)

	pages, err := model.Expand(p.prj.Root, []string{cfg.Pages}, "")
	if err != nil {
		return err
	}
	dest := p.prj.Path(cfg.Dest)

	written := []string{}
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		p.log.Debug("rendering", "file", p.rel(page.Path))
		tpl, err := set.FromFile(page.Path)
		if err != nil {
			return fmt.Errorf("%s: %w", p.rel(page.Path), err)
		}

		name := pageOutputName(page.Rel)
		data := pongo2.Context{}
		for k, v := range p.prj.Definitions {
			data[k] = v
		}
		data["page"] = strings.TrimSuffix(name, ".html")

		out, err := tpl.ExecuteBytes(data)
		if err != nil {
			return fmt.Errorf("%s: %w", p.rel(page.Path), err)
		}
		fn := filepath.Join(dest, filepath.FromSlash(name))
		if err := p.write(fn, out); err != nil {
			return err
		}
		written = append(written, fn)
	}
	if len(written) > 0 {
		p.reload(written...)
	}
	return nil
}

func pageOutputName(rel string) string {
	return strings.TrimSuffix(rel, path.Ext(rel)) + ".html"
}
