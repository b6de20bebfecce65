package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/adnsv/go-utils/filesystem"
	"github.com/adnsv/sitepipe/logging"
	"github.com/adnsv/sitepipe/model"
	"github.com/adnsv/sitepipe/runner"
	"github.com/adnsv/sitepipe/tasks"
	cli "github.com/jawher/mow.cli"
)

func main() {
	configFN := ""
	variant := ""
	listTasks := false
	verbose := false
	names := []string{}

	app := cli.App("sitepipe", "Front-end task runner: styles, scripts, images, templates, live reload")
	app.Version("V version", "sitepipe "+app_version())
	app.Spec = "[-c=<CONFIG>] [--variant=<templated|bundled>] [--tasks] [-v] [TASK...]"
	app.StringOptPtr(&configFN, "c config", "", "project file, defaults to ./"+model.DefaultConfigName+" when present")
	app.StringOptPtr(&variant, "variant", "", "pipeline variant: templated (a) or bundled (b)")
	app.BoolOptPtr(&listTasks, "tasks", false, "list the available tasks")
	app.BoolOptPtr(&verbose, "v verbose", false, "log every file read and written")
	app.StringsArgPtr(&names, "TASK", nil, "tasks to run in order (default: "+tasks.TaskDefault+")")

	app.Action = func() {
		log := logging.New(os.Stderr, verbose)

		if configFN == "" && filesystem.FileExists(model.DefaultConfigName) {
			configFN = model.DefaultConfigName
		}
		v := model.Variant("")
		if variant != "" {
			var err error
			if v, err = model.ParseVariant(variant); err != nil {
				fatal(log, err)
			}
		}
		prj, err := model.LoadProject(configFN, v)
		if err != nil {
			fatal(log, err)
		}
		log.Debug("project loaded", "root", prj.Root, "variant", prj.Variant, "config", configFN)

		reg := runner.NewRegistry(log)
		if err := tasks.New(prj, log).Register(reg); err != nil {
			fatal(log, err)
		}

		if listTasks {
			printTasks(reg)
			return
		}
		if len(names) == 0 {
			names = []string{tasks.TaskDefault}
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := runTasks(ctx, log, reg, names); err != nil {
			stop()
			fatal(log, err)
		}
	}

	app.Run(os.Args)
}

// runTasks treats cancellation of ctx as a normal stop.
func runTasks(ctx context.Context, log *slog.Logger, reg *runner.Registry, names []string) error {
	err := reg.RunAll(ctx, names...)
	if err != nil && ctx.Err() != nil && errors.Is(err, context.Canceled) {
		log.Info("interrupted")
		return nil
	}
	return err
}

func printTasks(reg *runner.Registry) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, t := range reg.Tasks() {
		desc := t.Description
		if t.Mode != runner.ModeTask {
			desc = fmt.Sprintf("%s %v: %s", t.Mode, t.Members, desc)
		}
		fmt.Fprintf(w, "%s\t%s\n", t.Name, desc)
	}
	w.Flush()
}

func fatal(log *slog.Logger, err error) {
	log.Log(context.Background(), logging.LevelFatal, "failed", "err", err)
	cli.Exit(1)
}
