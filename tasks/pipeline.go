// Package tasks implements the build tasks of a front-end project and
// registers them, together with the build and default pipelines, on a
// runner.Registry.
package tasks

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/adnsv/go-utils/filesystem"
	"github.com/adnsv/sitepipe/devserver"
	"github.com/adnsv/sitepipe/model"
)

// Notifier receives the files a task wrote, relative to the served directory.
type Notifier interface {
	Reload(paths ...string)
}

// Pipeline binds the tasks to one project.
type Pipeline struct {
	prj    *model.Project
	log    *slog.Logger
	hub    *devserver.Hub
	notify Notifier
}

type Option func(*Pipeline)

// WithNotifier replaces the dev server hub as the reload target.
func WithNotifier(n Notifier) Option {
	return func(p *Pipeline) { p.notify = n }
}

func New(prj *model.Project, log *slog.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		prj: prj,
		log: log,
		hub: devserver.NewHub(log),
	}
	p.notify = p.hub
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pipeline) Project() *model.Project {
	return p.prj
}

// write creates parent directories and leaves fn untouched when its content
// already equals buf.
func (p *Pipeline) write(fn string, buf []byte) error {
	if err := os.MkdirAll(filepath.Dir(fn), 0o755); err != nil {
		return err
	}
	p.log.Debug("writing", "file", p.rel(fn))
	return filesystem.WriteFileIfChanged(fn, buf)
}

// rel returns fn relative to the project root, slash separated.
func (p *Pipeline) rel(fn string) string {
	r, err := filepath.Rel(p.prj.Root, fn)
	if err != nil {
		return filepath.ToSlash(fn)
	}
	return filepath.ToSlash(r)
}

// reload notifies with paths relative to the served directory.
func (p *Pipeline) reload(files ...string) {
	base := p.prj.Path(p.prj.Server.BaseDir)
	paths := make([]string, 0, len(files))
	for _, fn := range files {
		r, err := filepath.Rel(base, fn)
		if err != nil {
			r = fn
		}
		paths = append(paths, filepath.ToSlash(r))
	}
	p.notify.Reload(paths...)
}
