package tasks

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/adnsv/sitepipe/runner"
	"github.com/adnsv/sitepipe/watch"
)

// Task names.
const (
	TaskTemplates = "templates"
	TaskStyles    = "styles"
	TaskScripts   = "scripts"
	TaskImages    = "images"
	TaskCopy      = "copy"
	TaskClean     = "clean"
	TaskServe     = "serve"
	TaskWatch     = "watch"
	TaskBuild     = "build"
	TaskDefault   = "default"
)

// Register adds every task of the project's variant, then the build and
// default pipelines.
func (p *Pipeline) Register(reg *runner.Registry) error {
	type entry struct {
		name, desc string
		fn         runner.Func
	}
	entries := []entry{}
	if p.prj.Templates.Enabled {
		entries = append(entries, entry{TaskTemplates, "render template pages to html", p.Templates})
	}
	entries = append(entries,
		entry{TaskStyles, "compile, prefix and write stylesheets", p.Styles},
		entry{TaskScripts, "concatenate and minify scripts", p.Scripts},
		entry{TaskImages, "optimize images into the output directory", p.Images},
		entry{TaskCopy, "copy html, css, js and fonts into the output directory", p.Copy},
		entry{TaskClean, "remove the output directory", p.Clean},
		entry{TaskServe, "serve the source directory with live reload", p.Serve},
		entry{TaskWatch, "rerun tasks when sources change", p.watchFunc(reg)},
	)
	for _, e := range entries {
		if err := reg.Register(e.name, e.desc, e.fn); err != nil {
			return err
		}
	}

	if err := reg.Series(TaskBuild, "clean, optimize images, copy to output",
		TaskClean, TaskImages, TaskCopy); err != nil {
		return err
	}

	dev := []string{}
	if p.prj.Templates.Enabled {
		dev = append(dev, TaskTemplates)
	}
	dev = append(dev, TaskStyles, TaskScripts, TaskServe, TaskWatch)
	if err := reg.Parallel(TaskDefault, "compile, serve and watch", dev...); err != nil {
		return err
	}

	// watch rules may only name tasks that exist in this variant
	for i, r := range p.prj.Watch {
		if r.Task == "" {
			continue
		}
		if _, err := reg.Lookup(r.Task); err != nil {
			return fmt.Errorf("watch[%d]: %w", i, err)
		}
	}
	return nil
}

// Watch runs the project's watch rules until ctx is cancelled. Rules naming
// a task run it through reg; reload rules notify the dev server directly.
func (p *Pipeline) Watch(ctx context.Context, reg *runner.Registry) error {
	w := watch.New(p.prj.Root, p.log)
	for i, r := range p.prj.Watch {
		rule := watch.Rule{Patterns: r.Paths}
		if r.Task != "" {
			task := r.Task
			rule.Name = task
			rule.Action = func(ctx context.Context, files []string) error {
				return reg.Run(ctx, task)
			}
		} else {
			rule.Name = fmt.Sprintf("reload#%d", i)
			rule.Action = func(ctx context.Context, files []string) error {
				abs := make([]string, 0, len(files))
				for _, f := range files {
					abs = append(abs, filepath.Join(p.prj.Root, filepath.FromSlash(f)))
				}
				p.reload(abs...)
				return nil
			}
		}
		w.Add(rule)
	}
	return w.Run(ctx)
}

func (p *Pipeline) watchFunc(reg *runner.Registry) runner.Func {
	return func(ctx context.Context) error {
		return p.Watch(ctx, reg)
	}
}
