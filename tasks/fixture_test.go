package tasks

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/adnsv/sitepipe/logging"
	"github.com/adnsv/sitepipe/model"
	"github.com/stretchr/testify/require"
)

type notifications struct {
	mu    sync.Mutex
	calls [][]string
}

func (n *notifications) Reload(paths ...string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, append([]string(nil), paths...))
}

func (n *notifications) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	ret := []string{}
	for _, c := range n.calls {
		ret = append(ret, c...)
	}
	return ret
}

func writeFile(t *testing.T, root, rel string, buf []byte) {
	t.Helper()
	fn := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(fn), 0o755))
	require.NoError(t, os.WriteFile(fn, buf, 0o644))
}

func readFile(t *testing.T, root, rel string) string {
	t.Helper()
	buf, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(buf)
}

func gradient() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 8), G: uint8(y * 8), B: 128, A: 255})
		}
	}
	return img
}

func pngBytes(t *testing.T) []byte {
	buf := &bytes.Buffer{}
	enc := png.Encoder{CompressionLevel: png.NoCompression}
	require.NoError(t, enc.Encode(buf, gradient()))
	return buf.Bytes()
}

func jpegBytes(t *testing.T) []byte {
	buf := &bytes.Buffer{}
	require.NoError(t, jpeg.Encode(buf, gradient(), &jpeg.Options{Quality: 100}))
	return buf.Bytes()
}

const (
	mainSCSS   = "$pad: 4px;\n.btn {\n  padding: $pad;\n  user-select: none;\n  .icon { display: block; }\n}\n"
	extraSCSS  = "@import \"vars\";\n.card { margin: $gap; }\n"
	varsSCSS   = "$gap: 12px;\n"
	vendorJS   = "var Lib = { version: \"1.0\" };\n"
	entryJS    = "function greet(name) {\n  return \"hello \" + name + \" \" + Lib.version;\n}\nconsole.log(greet(\"world\"));\n"
	indexNJK   = "<html><body>{% include \"modules/header.html\" %}<h1>{{ title }}</h1></body></html>\n"
	headerHTML = "<header>{{ page }}</header>"
	logoSVG    = "<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"0 0 10 10\">\n  <!-- logo -->\n  <rect id=\"box\"   x=\"0\" y=\"0\" width=\"10\" height=\"10\" />\n</svg>\n"
)

// newProject lays out a small site and returns a pipeline over it.
func newProject(t *testing.T, v model.Variant) (*Pipeline, *notifications) {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "app/scss/main.scss", []byte(mainSCSS))
	writeFile(t, root, "app/scss/extra.scss", []byte(extraSCSS))
	writeFile(t, root, "app/scss/_vars.scss", []byte(varsSCSS))
	writeFile(t, root, "vendor/lib.js", []byte(vendorJS))
	writeFile(t, root, "app/js/main.js", []byte(entryJS))
	writeFile(t, root, "app/index.njk", []byte(indexNJK))
	writeFile(t, root, "app/modules/header.html", []byte(headerHTML))
	writeFile(t, root, "app/images/gradient.png", pngBytes(t))
	writeFile(t, root, "app/images/photos/photo.jpg", jpegBytes(t))
	writeFile(t, root, "app/images/icons/logo.svg", []byte(logoSVG))
	writeFile(t, root, "app/fonts/body.woff2", []byte("wOF2fontdata"))
	if v == model.VariantBundled {
		writeFile(t, root, "app/index.html", []byte("<html><body>static</body></html>"))
	}

	prj, err := model.Preset(v)
	require.NoError(t, err)
	prj.Root = root
	prj.Scripts.Vendor = []string{"vendor/lib.js"}
	prj.Definitions["title"] = "Hello"
	require.NoError(t, prj.Validate())

	n := &notifications{}
	return New(prj, logging.Discard(), WithNotifier(n)), n
}

// snapshot maps every file under dir to its content.
func snapshot(t *testing.T, dir string) map[string]string {
	t.Helper()
	ret := map[string]string{}
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		buf, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		ret[filepath.ToSlash(rel)] = string(buf)
		return nil
	})
	require.NoError(t, err)
	return ret
}
