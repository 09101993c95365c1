package main

import (
	"bytes"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/holocron/pkg/types"
)

func TestParseConstraints(t *testing.T) {
	eq, err := parseConstraints([]string{"character_type=Droid", "died_in_movie_id=null", "id=2", "has_force=true", "name=a=b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"character_type":   "Droid",
		"died_in_movie_id": nil,
		"id":               int64(2),
		"has_force":        true,
		"name":             "a=b",
	}, eq)

	_, err = parseConstraints([]string{"Droid"})
	assert.ErrorIs(t, err, errUsage)
	_, err = parseConstraints([]string{"=Droid"})
	assert.ErrorIs(t, err, errUsage)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitUserError, exitCode(fmt.Errorf("load: %w", types.ErrTablesExist)))
	assert.Equal(t, exitUserError, exitCode(types.ErrUnknownVariant))
	assert.Equal(t, exitSysError, exitCode(fmt.Errorf("disk on fire")))
}

func TestRun_ExitCodes(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(t.TempDir(), "config"))
	dataDir := t.TempDir()

	var stdout, stderr bytes.Buffer
	code := run([]string{"load", "--data-dir", dataDir}, &stdout, &stderr)
	require.Equal(t, exitSuccess, code, stderr.String())
	assert.Contains(t, stdout.String(), "loaded 9 movies and 42 characters (generic")

	stdout.Reset()
	stderr.Reset()
	code = run([]string{"load", "--data-dir", dataDir}, &stdout, &stderr)
	assert.Equal(t, exitUserError, code)
	assert.Contains(t, stderr.String(), types.ErrTablesExist.Error())

	stderr.Reset()
	code = run([]string{"list", "planets", "--data-dir", dataDir}, &stdout, &stderr)
	assert.Equal(t, exitUserError, code)
	assert.Contains(t, stderr.String(), "valid: movies, characters")

	stderr.Reset()
	code = run([]string{"load", "--data-dir", dataDir, "--variant", "postgres"}, &stdout, &stderr)
	assert.Equal(t, exitUserError, code)
	assert.Contains(t, stderr.String(), types.ErrVariantUnsupported.Error())
}
