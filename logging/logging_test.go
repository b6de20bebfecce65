package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLevels(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(buf, false)
	log.Debug("hidden")
	log.Info("shown", "task", "styles")
	log.Log(context.Background(), LevelFatal, "boom")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown task=styles")
	assert.Contains(t, out, "level=FATAL")

	buf.Reset()
	New(buf, true).Debug("visible")
	assert.Contains(t, buf.String(), "level=DEBUG msg=visible")
}

func TestDiscard(t *testing.T) {
	assert.False(t, Discard().Enabled(context.Background(), LevelFatal))
}
