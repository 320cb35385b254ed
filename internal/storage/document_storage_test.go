package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

var pngHeader = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}

func TestDocumentStorage_Save_PNG(t *testing.T) {
	store, err := NewDocumentStorage(t.TempDir(), 1)
	assert.NoError(t, err)

	contractID := uuid.New()
	content := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0x00}, 64)...)

	path, mime, size, err := store.Save(context.Background(), contractID, "scan.png", bytes.NewReader(content))

	assert.NoError(t, err)
	assert.Equal(t, "image/png", mime)
	assert.Equal(t, int64(len(content)), size)
	assert.True(t, strings.HasPrefix(path, contractID.String()+"/"))

	saved, err := os.ReadFile(filepath.Join(store.rootPath, filepath.FromSlash(path)))
	assert.NoError(t, err)
	assert.Equal(t, content, saved)
}

func TestDocumentStorage_Save_PDF(t *testing.T) {
	store, err := NewDocumentStorage(t.TempDir(), 1)
	assert.NoError(t, err)

	content := []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n%%EOF")

	_, mime, _, err := store.Save(context.Background(), uuid.New(), "contract.pdf", bytes.NewReader(content))

	assert.NoError(t, err)
	assert.Equal(t, "application/pdf", mime)
}

func TestDocumentStorage_Save_RejectsUnknownType(t *testing.T) {
	store, err := NewDocumentStorage(t.TempDir(), 1)
	assert.NoError(t, err)

	_, _, _, err = store.Save(context.Background(), uuid.New(), "notes.txt", strings.NewReader("просто текст"))

	assert.Error(t, err)
}

func TestDocumentStorage_Save_RejectsDisallowedType(t *testing.T) {
	store, err := NewDocumentStorage(t.TempDir(), 1)
	assert.NoError(t, err)

	// Валидный zip-архив определяется, но в список разрешённых не входит
	zipHeader := append([]byte{0x50, 0x4b, 0x03, 0x04}, bytes.Repeat([]byte{0x00}, 32)...)

	_, _, _, err = store.Save(context.Background(), uuid.New(), "archive.zip", bytes.NewReader(zipHeader))

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "неподдерживаемый тип")
}

func TestDocumentStorage_Save_EnforcesSizeLimit(t *testing.T) {
	store, err := NewDocumentStorage(t.TempDir(), 1)
	assert.NoError(t, err)
	store.maxUploadBytes = 32

	content := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0x00}, 128)...)

	_, _, _, err = store.Save(context.Background(), uuid.New(), "big.png", bytes.NewReader(content))

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "лимит")

	// Временных файлов после отказа не остаётся
	entries, readErr := os.ReadDir(store.rootPath)
	assert.NoError(t, readErr)
	for _, entry := range entries {
		sub, subErr := os.ReadDir(filepath.Join(store.rootPath, entry.Name()))
		assert.NoError(t, subErr)
		assert.Empty(t, sub)
	}
}

func TestDocumentStorage_Delete_MissingFileIsNoError(t *testing.T) {
	store, err := NewDocumentStorage(t.TempDir(), 1)
	assert.NoError(t, err)

	assert.NoError(t, store.Delete(context.Background(), "ghost/nothing.pdf"))
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "passwd", sanitizeFilename("../../etc/passwd"))
	assert.Equal(t, "document", sanitizeFilename(""))
	assert.Equal(t, "scan.pdf", sanitizeFilename("scan.pdf"))
}
