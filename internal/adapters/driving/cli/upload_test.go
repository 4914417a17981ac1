package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docthemes/internal/core/domain"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestUploadCmd_Folder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "lease.pdf"), "lease body")
	writeFile(t, filepath.Join(dir, "notes", "memo.txt"), "memo body")
	writeFile(t, filepath.Join(dir, ".secret"), "hidden")

	answering := &stubAnswering{docs: []domain.DocumentID{"lease.pdf", "memo.txt"}}
	setupTestServices(t, answering)

	out, err := executeCommand(t, "upload", dir)

	require.NoError(t, err)
	assert.Contains(t, out, "2 files uploaded, 2 documents available")
	assert.Equal(t, map[string]string{
		"lease.pdf":      "lease body",
		"notes/memo.txt": "memo body",
	}, answering.uploaded)
}

func TestUploadCmd_ExtensionFilter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "lease.pdf"), "lease body")
	writeFile(t, filepath.Join(dir, "memo.txt"), "memo body")

	answering := &stubAnswering{}
	setupTestServices(t, answering)

	_, err := executeCommand(t, "upload", "--ext", "pdf", dir)

	require.NoError(t, err)
	assert.Equal(t, map[string]string{"lease.pdf": "lease body"}, answering.uploaded)
}

func TestUploadCmd_RefreshWarning(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "lease.pdf")
	writeFile(t, file, "lease body")

	setupTestServices(t, &stubAnswering{listErr: errors.New("registry offline")})

	out, err := executeCommand(t, "upload", file)

	require.NoError(t, err)
	assert.Contains(t, out, "1 files uploaded")
	assert.Contains(t, out, "warning:")
	assert.Contains(t, out, "registry offline")
}

func TestUploadCmd_Failure(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "lease.pdf"), "lease body")

	setupTestServices(t, &stubAnswering{uploadErr: domain.ErrTransport})

	_, err := executeCommand(t, "upload", dir)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTransport)
	assert.Contains(t, err.Error(), "upload failed")
}

func TestUploadCmd_EmptyFolder(t *testing.T) {
	setupTestServices(t, &stubAnswering{})

	_, err := executeCommand(t, "upload", t.TempDir())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUploadCmd_MissingPath(t *testing.T) {
	setupTestServices(t, &stubAnswering{})

	_, err := executeCommand(t, "upload", filepath.Join(t.TempDir(), "missing"))

	assert.Error(t, err)
}
