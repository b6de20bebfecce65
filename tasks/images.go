package tasks

import (
	"bytes"
	"context"
	"fmt"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"

	"github.com/adnsv/sitepipe/model"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/svg"
)

// ImageOptions tune the per-format optimizers.
type ImageOptions struct {
	JPEGQuality  int
	SVGPrecision int
}

// Images optimizes every image under images.src into images.dest, keeping
// paths relative to the static part of the pattern.
func (p *Pipeline) Images(ctx context.Context) error {
	cfg := p.prj.Images
	srcs, err := model.Expand(p.prj.Root, []string{cfg.Sources}, "")
	if err != nil {
		return err
	}
	opts := ImageOptions{JPEGQuality: cfg.JPEGQuality, SVGPrecision: cfg.SVGPrecision}
	dest := p.prj.Path(cfg.Dest)

	saved := 0
	for _, src := range srcs {
		if err := ctx.Err(); err != nil {
			return err
		}
		buf, err := os.ReadFile(src.Path)
		if err != nil {
			return err
		}
		t := model.AssetTypeFromFileExt(filepath.Ext(src.Path))
		out, err := OptimizeImage(t, buf, opts)
		if err != nil {
			return fmt.Errorf("%s: %w", p.rel(src.Path), err)
		}
		saved += len(buf) - len(out)
		if err := p.write(filepath.Join(dest, filepath.FromSlash(src.Rel)), out); err != nil {
			return err
		}
	}
	p.log.Info("images optimized", "files", len(srcs), "saved", saved)
	return nil
}

// OptimizeImage re-encodes src according to t. The original bytes are
// returned whenever the optimized result is not smaller.
func OptimizeImage(t model.AssetType, src []byte, opts ImageOptions) ([]byte, error) {
	var out []byte
	var err error
	switch t {
	case model.AssetGIF:
		out, err = optimizeGIF(src)
	case model.AssetJPEG:
		out, err = optimizeJPEG(src, opts.JPEGQuality)
	case model.AssetPNG:
		out, err = optimizePNG(src)
	case model.AssetSVG:
		out, err = optimizeSVG(src, opts.SVGPrecision)
	default:
		return src, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", t.String(), err)
	}
	if len(out) >= len(src) {
		return src, nil
	}
	return out, nil
}

func optimizeGIF(src []byte) ([]byte, error) {
	g, err := gif.DecodeAll(bytes.NewReader(src))
	if err != nil {
		return nil, err
	}
	buf := &bytes.Buffer{}
	if err := gif.EncodeAll(buf, g); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func optimizeJPEG(src []byte, quality int) ([]byte, error) {
	img, err := jpeg.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, err
	}
	buf := &bytes.Buffer{}
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func optimizePNG(src []byte) ([]byte, error) {
	img, err := png.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, err
	}
	buf := &bytes.Buffer{}
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func optimizeSVG(src []byte, precision int) ([]byte, error) {
	m := minify.New()
	m.Add("image/svg+xml", &svg.Minifier{Precision: precision})
	return m.Bytes("image/svg+xml", src)
}
