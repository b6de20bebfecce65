package tasks

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adnsv/sitepipe/logging"
	"github.com/adnsv/sitepipe/model"
	"github.com/adnsv/sitepipe/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func taskNames(reg *runner.Registry) []string {
	ret := []string{}
	for _, t := range reg.Tasks() {
		ret = append(ret, t.Name)
	}
	return ret
}

func TestRegisterTemplatedVariant(t *testing.T) {
	p, _ := newProject(t, model.VariantTemplated)
	reg := newRegistry(t, p)

	assert.Equal(t, []string{
		TaskTemplates, TaskStyles, TaskScripts, TaskImages, TaskCopy, TaskClean,
		TaskServe, TaskWatch, TaskBuild, TaskDefault,
	}, taskNames(reg))

	build, err := reg.Lookup(TaskBuild)
	require.NoError(t, err)
	assert.Equal(t, runner.ModeSeries, build.Mode)
	assert.Equal(t, []string{TaskClean, TaskImages, TaskCopy}, build.Members)

	def, err := reg.Lookup(TaskDefault)
	require.NoError(t, err)
	assert.Equal(t, runner.ModeParallel, def.Mode)
	assert.Equal(t, []string{TaskTemplates, TaskStyles, TaskScripts, TaskServe, TaskWatch}, def.Members)
}

func TestRegisterBundledVariant(t *testing.T) {
	p, _ := newProject(t, model.VariantBundled)
	reg := newRegistry(t, p)

	assert.NotContains(t, taskNames(reg), TaskTemplates)
	def, err := reg.Lookup(TaskDefault)
	require.NoError(t, err)
	assert.Equal(t, []string{TaskStyles, TaskScripts, TaskServe, TaskWatch}, def.Members)
}

func TestRegisterRejectsUnknownWatchTask(t *testing.T) {
	p, _ := newProject(t, model.VariantBundled)
	p.Project().Watch = append(p.Project().Watch, &model.WatchRule{
		Paths: []string{"app/*.njk"},
		Task:  TaskTemplates,
	})
	err := p.Register(runner.NewRegistry(logging.Discard()))
	assert.ErrorIs(t, err, runner.ErrUnknownTask)
}

func TestWatchRecompilesStylesAndReloads(t *testing.T) {
	p, n := newProject(t, model.VariantTemplated)
	reg := newRegistry(t, p)
	root := p.Project().Root

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- reg.Run(ctx, TaskWatch) }()
	defer func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("watch did not stop")
		}
	}()

	// rewrite until the watcher, which starts asynchronously, reacts
	i := 0
	require.Eventually(t, func() bool {
		i++
		_ = os.WriteFile(filepath.Join(root, "app", "scss", "main.scss"), []byte(mainSCSS+".x"+string(rune('a'+i%26))+"{top:0}\n"), 0o644)
		for _, path := range n.all() {
			if path == "css/main.min.css" {
				return true
			}
		}
		return false
	}, 10*time.Second, 400*time.Millisecond)

	assert.Contains(t, readFile(t, root, "app/css/main.min.css"), "{top:0}")

	i = 0
	require.Eventually(t, func() bool {
		i++
		_ = os.WriteFile(filepath.Join(root, "app", "about.html"), []byte("<p>"+string(rune('a'+i%26))+"</p>"), 0o644)
		for _, path := range n.all() {
			if path == "about.html" {
				return true
			}
		}
		return false
	}, 10*time.Second, 400*time.Millisecond)
}
