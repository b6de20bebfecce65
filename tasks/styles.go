package tasks

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/adnsv/sitepipe/model"
	"github.com/bep/golibsass/libsass"
	"github.com/evanw/esbuild/pkg/api"
)

// Styles compiles the stylesheet sources, adds vendor prefixes for the
// configured browsers and writes one file per source, or a single
// concatenated file when styles.concat is set.
func (p *Pipeline) Styles(ctx context.Context) error {
	cfg := p.prj.Styles
	srcs, err := model.Expand(p.prj.Root, []string{cfg.Sources}, "")
	if err != nil {
		return err
	}
	engines, err := ParseEngines(cfg.Browsers)
	if err != nil {
		return err
	}
	minify := strings.EqualFold(cfg.OutputStyle, "compressed")
	dest := p.prj.Path(cfg.Dest)

	includes := make([]string, 0, len(cfg.IncludePaths))
	for _, inc := range cfg.IncludePaths {
		includes = append(includes, p.prj.Path(inc))
	}

	var bundle []string
	written := []string{}
	for _, src := range srcs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if isPartial(src.Rel) {
			continue
		}

		p.log.Debug("compiling", "file", p.rel(src.Path))
		css, err := CompileSCSS(src.Path, cfg.OutputStyle, includes)
		if err != nil {
			return err
		}
		css, err = PrefixCSS(css, engines, minify)
		if err != nil {
			return fmt.Errorf("%s: %w", p.rel(src.Path), err)
		}

		if cfg.Concat != "" {
			bundle = append(bundle, css)
			continue
		}
		fn := filepath.Join(dest, filepath.FromSlash(styleOutputName(src.Rel, cfg.Suffix)))
		if err := p.write(fn, []byte(css)); err != nil {
			return err
		}
		written = append(written, fn)
	}

	if cfg.Concat != "" && len(bundle) > 0 {
		fn := filepath.Join(dest, cfg.Concat)
		if err := p.write(fn, []byte(strings.Join(bundle, "\n"))); err != nil {
			return err
		}
		written = append(written, fn)
	}

	if len(written) > 0 {
		p.reload(written...)
	}
	return nil
}

// CompileSCSS compiles one stylesheet with libsass. Imports resolve against
// the file's own directory first, then includePaths.
func CompileSCSS(fn string, outputStyle string, includePaths []string) (string, error) {
	buf, err := os.ReadFile(fn)
	if err != nil {
		return "", err
	}
	tr, err := libsass.New(libsass.Options{
		OutputStyle:  libsass.ParseOutputStyle(outputStyle),
		IncludePaths: append([]string{filepath.Dir(fn)}, includePaths...),
		SassSyntax:   strings.EqualFold(filepath.Ext(fn), ".sass"),
	})
	if err != nil {
		return "", err
	}
	res, err := tr.Execute(string(buf))
	if err != nil {
		return "", fmt.Errorf("%s: %w", fn, err)
	}
	return res.CSS, nil
}

// PrefixCSS adds the vendor prefixes engines need and optionally minifies.
func PrefixCSS(css string, engines []api.Engine, minify bool) (string, error) {
	res := api.Transform(css, api.TransformOptions{
		Loader:           api.LoaderCSS,
		Engines:          engines,
		MinifyWhitespace: minify,
		MinifySyntax:     minify,
	})
	if err := messagesError("css", res.Errors); err != nil {
		return "", err
	}
	return string(res.Code), nil
}

func isPartial(rel string) bool {
	return strings.HasPrefix(path.Base(rel), "_")
}

// styleOutputName maps "pages/main.scss" to "pages/main<suffix>.css".
func styleOutputName(rel, suffix string) string {
	return strings.TrimSuffix(rel, path.Ext(rel)) + suffix + ".css"
}
