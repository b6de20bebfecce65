package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adnsv/go-utils/filesystem"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownVariant = errors.New("unknown variant")
	ErrInvalidConfig  = errors.New("invalid config")
)

// DefaultConfigName is picked up from the working directory when no config is given.
const DefaultConfigName = "sitepipe.yaml"

// LoadProject reads a yaml project file on top of the preset for its variant.
// An empty fn yields the preset rooted at the working directory. A non-empty
// variant overrides the one named in the file.
func LoadProject(fn string, variant Variant) (*Project, error) {
	if fn == "" {
		root, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		prj, err := Preset(variant)
		if err != nil {
			return nil, err
		}
		prj.Root = root
		return prj, prj.Validate()
	}

	fn, err := filepath.Abs(fn)
	if err != nil {
		return nil, err
	}
	if err := filesystem.ValidateFileExists(fn); err != nil {
		return nil, err
	}
	buf, err := os.ReadFile(fn)
	if err != nil {
		return nil, err
	}

	prj, err := ParseProject(buf, variant)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fn, err)
	}
	prj.Root = filepath.Dir(fn)
	return prj, nil
}

// ParseProject decodes yaml content. Root is left empty.
func ParseProject(buf []byte, variant Variant) (*Project, error) {
	head := struct {
		Variant Variant `yaml:"variant"`
	}{}
	if err := yaml.Unmarshal(buf, &head); err != nil {
		return nil, err
	}
	if variant == "" {
		variant = head.Variant
	}

	prj, err := Preset(variant)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(buf, prj); err != nil {
		return nil, err
	}
	prj.Variant, err = ParseVariant(string(variant))
	if err != nil {
		return nil, err
	}
	return prj, prj.Validate()
}

// Validate checks the settings every task depends on.
func (prj *Project) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
	}

	if prj.App == "" {
		return invalid("missing app directory")
	}
	if prj.Dist == "" {
		return invalid("missing dist directory")
	}
	if prj.Scripts.Entry == "" {
		return invalid("missing scripts.entry")
	}
	if prj.Scripts.Output == "" {
		return invalid("missing scripts.output")
	}
	if prj.Styles.Sources == "" {
		return invalid("missing styles.src")
	}
	if q := prj.Images.JPEGQuality; q < 1 || q > 100 {
		return invalid("images.jpeg-quality %d out of range 1..100", q)
	}
	if p := prj.Server.Port; p < 0 || p > 65535 {
		return invalid("server.port %d out of range", p)
	}
	if prj.Templates.Enabled && prj.Templates.Pages == "" {
		return invalid("templates enabled without templates.pages")
	}
	for i, r := range prj.Watch {
		if r == nil || len(r.Paths) == 0 {
			return invalid("watch[%d]: no paths", i)
		}
		if r.Task == "" && !r.Reload {
			return invalid("watch[%d]: needs a task or reload", i)
		}
	}
	return nil
}
