package tasks

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	"github.com/adnsv/sitepipe/model"
	"github.com/evanw/esbuild/pkg/api"
)

// Scripts concatenates the vendor files and then the entry file, in that
// order, minifies the result and writes scripts.dest/scripts.output.
func (p *Pipeline) Scripts(ctx context.Context) error {
	cfg := p.prj.Scripts
	patterns := append(append([]string(nil), cfg.Vendor...), cfg.Entry)
	srcs, err := model.Expand(p.prj.Root, patterns, "")
	if err != nil {
		return err
	}

	parts := make([][]byte, 0, len(srcs))
	for _, src := range srcs {
		if err := ctx.Err(); err != nil {
			return err
		}
		p.log.Debug("loading", "file", p.rel(src.Path))
		buf, err := os.ReadFile(src.Path)
		if err != nil {
			return err
		}
		parts = append(parts, buf)
	}

	out, err := MinifyJS(ConcatJS(parts...))
	if err != nil {
		return err
	}
	fn := filepath.Join(p.prj.Path(cfg.Dest), cfg.Output)
	if err := p.write(fn, out); err != nil {
		return err
	}
	p.reload(fn)
	return nil
}

// ConcatJS joins sources with a newline between them.
func ConcatJS(parts ...[]byte) []byte {
	return bytes.Join(parts, []byte("\n"))
}

// MinifyJS minifies a script without changing its module format.
func MinifyJS(src []byte) ([]byte, error) {
	res := api.Transform(string(src), api.TransformOptions{
		Loader:            api.LoaderJS,
		MinifyWhitespace:  true,
		MinifyIdentifiers: true,
		MinifySyntax:      true,
	})
	if err := messagesError("js", res.Errors); err != nil {
		return nil, err
	}
	return res.Code, nil
}
