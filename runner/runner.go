// Package runner keeps a registry of named tasks and composes them into
// sequential and concurrent pipelines.
//
// A pipeline refers to its members by name. Members must be registered
// before the pipeline that uses them, so a registry never contains cycles.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// Func is the body of a task.
type Func func(ctx context.Context) error

type Mode int

const (
	ModeTask = Mode(iota)
	ModeSeries
	ModeParallel
)

func (m Mode) String() string {
	switch m {
	case ModeTask:
		return "task"
	case ModeSeries:
		return "series"
	case ModeParallel:
		return "parallel"
	default:
		return "<invalid>"
	}
}

type Task struct {
	Name        string
	Description string
	Mode        Mode
	Members     []string // pipelines only

	fn Func
}

// Registry holds tasks in registration order.
type Registry struct {
	log   *slog.Logger
	tasks map[string]*Task
	order []string
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		log:   log,
		tasks: map[string]*Task{},
	}
}

// Register adds a plain task.
func (r *Registry) Register(name, desc string, fn Func) error {
	if fn == nil {
		return fmt.Errorf("task %q: nil function", name)
	}
	return r.add(&Task{Name: name, Description: desc, Mode: ModeTask, fn: fn})
}

// Series adds a pipeline running members one after another, stopping at the
// first failure.
func (r *Registry) Series(name, desc string, members ...string) error {
	return r.addPipeline(name, desc, ModeSeries, members)
}

// Parallel adds a pipeline running members concurrently. The first failure
// cancels the context of the remaining members.
func (r *Registry) Parallel(name, desc string, members ...string) error {
	return r.addPipeline(name, desc, ModeParallel, members)
}

func (r *Registry) addPipeline(name, desc string, mode Mode, members []string) error {
	if len(members) == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyPipeline, name)
	}
	for _, m := range members {
		if _, ok := r.tasks[m]; !ok {
			return unknownf("%s (member of %s)", m, name)
		}
	}
	return r.add(&Task{
		Name:        name,
		Description: desc,
		Mode:        mode,
		Members:     append([]string(nil), members...),
	})
}

func (r *Registry) add(t *Task) error {
	if strings.TrimSpace(t.Name) == "" {
		return errors.New("task name required")
	}
	if _, ok := r.tasks[t.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateTask, t.Name)
	}
	r.tasks[t.Name] = t
	r.order = append(r.order, t.Name)
	return nil
}

func (r *Registry) Lookup(name string) (*Task, error) {
	t, ok := r.tasks[name]
	if !ok {
		return nil, unknownf("%s (known: %s)", name, strings.Join(r.sortedNames(), ", "))
	}
	return t, nil
}

// Tasks returns the registered tasks in registration order.
func (r *Registry) Tasks() []*Task {
	ret := make([]*Task, 0, len(r.order))
	for _, n := range r.order {
		ret = append(ret, r.tasks[n])
	}
	return ret
}

func (r *Registry) sortedNames() []string {
	names := append([]string(nil), r.order...)
	sort.Strings(names)
	return names
}

// RunAll runs the named tasks one after another.
func (r *Registry) RunAll(ctx context.Context, names ...string) error {
	for _, n := range names {
		if _, err := r.Lookup(n); err != nil {
			return err
		}
	}
	for _, n := range names {
		if err := r.Run(ctx, n); err != nil {
			return err
		}
	}
	return nil
}

// Run executes a task or pipeline by name.
func (r *Registry) Run(ctx context.Context, name string) error {
	t, err := r.Lookup(name)
	if err != nil {
		return err
	}

	start := time.Now()
	r.log.Info("Starting", "task", name)

	switch t.Mode {
	case ModeSeries:
		err = r.runSeries(ctx, t.Members)
	case ModeParallel:
		err = r.runParallel(ctx, t.Members)
	default:
		err = t.fn(ctx)
		var te *TaskError
		if err != nil && !errors.As(err, &te) {
			err = &TaskError{Task: name, Err: err}
		}
	}

	elapsed := time.Since(start).Round(time.Millisecond)
	if err != nil {
		r.log.Error("Errored", "task", name, "after", elapsed, "err", err)
		return err
	}
	r.log.Info("Finished", "task", name, "after", elapsed)
	return nil
}

func (r *Registry) runSeries(ctx context.Context, members []string) error {
	for _, m := range members {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.Run(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) runParallel(ctx context.Context, members []string) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, m := range members {
		g.Go(func() error {
			return r.Run(gctx, m)
		})
	}
	return g.Wait()
}
