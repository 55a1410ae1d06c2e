package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func writeToken(t *testing.T, content string, perm os.FileMode) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".cloudflare")
	require.NoError(t, os.WriteFile(path, []byte(content), perm))
	require.NoError(t, os.Chmod(path, perm))
	return path
}

func TestCloudflareToken(t *testing.T) {
	path := writeToken(t, "secret-token\n", 0600)
	token, err := cloudflareToken(context.Background(), path, nil, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, "secret-token", token)
}

func TestCloudflareTokenReadOnly(t *testing.T) {
	path := writeToken(t, "secret-token", 0400)
	token, err := cloudflareToken(context.Background(), path, nil, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, "secret-token", token)
}

func TestCloudflareTokenPermissions(t *testing.T) {
	path := writeToken(t, "secret-token\n", 0644)
	_, err := cloudflareToken(context.Background(), path, nil, quietLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "-rw-r--r--")
}

func TestCloudflareTokenEmpty(t *testing.T) {
	path := writeToken(t, "\n", 0600)
	_, err := cloudflareToken(context.Background(), path, nil, quietLogger())
	assert.ErrorContains(t, err, "is empty")
}

func TestCloudflareTokenMissingWithoutTerminal(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".cloudflare")
	_, err := cloudflareToken(context.Background(), path, nil, quietLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stdin is not a terminal")
	assert.NoFileExists(t, path)
}
