// cmd/tools/registry-updater/main_test.go
package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidescore-workers/pkg/registry"
)

func TestAddUpdateValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")

	require.NoError(t, runAdd([]string{
		"-path", path,
		"-id", "score-audit",
		"-displayName", "Score Audit",
		"-description", "Audits recorded scores",
		"-category", "reporting",
	}))

	require.NoError(t, runUpdate([]string{"-path", path, "-id", "score-audit", "-field", "retries", "-value", "3"}))
	require.NoError(t, runUpdate([]string{"-path", path, "-id", "score-audit", "-field", "tags", "-value", "reporting,audit"}))
	require.NoError(t, runValidate([]string{"-path", path}))

	reg, err := registry.LoadRegistry(path)
	require.NoError(t, err)
	a, ok := reg.Find("score-audit")
	require.True(t, ok)
	assert.Equal(t, 3, a.Retries)
	assert.Equal(t, []string{"reporting", "audit"}, a.Tags)
	assert.Equal(t, registry.StatusPlanned, a.ImplementationStatus)
}

func TestAdd_RejectsDuplicate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	args := []string{"-path", path, "-id", "a", "-displayName", "A", "-description", "d", "-category", "scoring"}

	require.NoError(t, runAdd(args))
	assert.Error(t, runAdd(args))
}

func TestSetField_Errors(t *testing.T) {
	a := &registry.Activity{}

	assert.Error(t, setField(a, "retries", "many"))
	assert.Error(t, setField(a, "owner", "x"))
}

func TestUpdate_RejectsInvalidTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, runAdd([]string{"-path", path, "-id", "a", "-displayName", "A", "-description", "d", "-category", "scoring"}))

	err := runUpdate([]string{"-path", path, "-id", "a", "-field", "timeout", "-value", "soon"})

	assert.ErrorContains(t, err, "invalid timeout")
}

func TestValidate_ShippedRegistry(t *testing.T) {
	assert.NoError(t, runValidate([]string{"-path", "../../../configs/activity-registry.json"}))
}
