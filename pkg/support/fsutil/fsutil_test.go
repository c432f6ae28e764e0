// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	exists, err := FileExists(dir)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = FileExists(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestReplaceTilde(t *testing.T) {
	got, err := ReplaceTilde("/tmp/results.csv")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/results.csv", got)

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	got, err = ReplaceTilde("~/results.csv")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "results.csv"), got)

	got, err = ReplaceTilde("~")
	require.NoError(t, err)
	assert.Equal(t, home, got)

	_, err = ReplaceTilde("~no_such_user_for_sure/results.csv")
	require.Error(t, err)
}
