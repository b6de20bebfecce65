package tasks

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/adnsv/sitepipe/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScriptsVendorFirst(t *testing.T) {
	p, n := newProject(t, model.VariantTemplated)
	require.NoError(t, p.Scripts(context.Background()))

	got := readFile(t, p.Project().Root, "app/js/main.min.js")
	want, err := MinifyJS(ConcatJS([]byte(vendorJS), []byte(entryJS)))
	require.NoError(t, err)
	assert.Equal(t, string(want), got)

	lib, greet := strings.Index(got, "Lib="), strings.Index(got, "function greet")
	require.GreaterOrEqual(t, lib, 0)
	require.GreaterOrEqual(t, greet, 0)
	assert.Less(t, lib, greet)
	assert.Less(t, len(got), len(vendorJS)+len(entryJS))

	assert.Equal(t, []string{"js/main.min.js"}, n.all())
}

func TestScriptsMissingVendor(t *testing.T) {
	p, _ := newProject(t, model.VariantTemplated)
	p.Project().Scripts.Vendor = []string{"node_modules/jquery/dist/jquery.js"}
	err := p.Scripts(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMinifyJSSyntaxError(t *testing.T) {
	_, err := MinifyJS([]byte("function ( {"))
	assert.Error(t, err)
}
