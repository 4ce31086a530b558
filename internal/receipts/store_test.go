package receipts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestStore_SaveExistsDelete(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), DirName))
	require.NoError(t, err)

	src := writeFile(t, t.TempDir(), "Invoice.PDF", "%PDF-1.4")

	name, err := store.Save(src)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".pdf"))
	assert.Equal(t, filepath.Base(name), name)
	assert.True(t, store.Exists(name))

	path, err := store.Path(name)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))

	// Saving the same source twice yields distinct names.
	second, err := store.Save(src)
	require.NoError(t, err)
	assert.NotEqual(t, name, second)

	assert.True(t, store.Delete(name))
	assert.False(t, store.Exists(name))
	assert.False(t, store.Delete(name))
}

func TestStore_SaveRejects(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	srcDir := t.TempDir()

	_, err = store.Save(filepath.Join(srcDir, "missing.jpg"))
	assert.ErrorIs(t, err, ErrFileNotFound)

	_, err = store.Save(writeFile(t, srcDir, "notes.txt", "hello"))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = store.Save(srcDir)
	assert.ErrorIs(t, err, ErrNotAFile)
}

func TestStore_Path(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	tests := []struct {
		name    string
		input   string
		wantErr bool
		want    string
	}{
		{name: "empty name", input: "", want: ""},
		{name: "plain name", input: "abc.png", want: filepath.Join(store.Dir(), "abc.png")},
		{name: "parent escape", input: "../secret.png", wantErr: true},
		{name: "absolute", input: "/etc/passwd", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.Path(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrOutsideReceiptsDir)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.False(t, store.Exists("../x.png"))
	assert.False(t, store.Delete(""))
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name      string
		path      string
		wantValid bool
		wantSize  int64
		wantError string
	}{
		{name: "png", path: writeFile(t, dir, "a.png", "12345"), wantValid: true, wantSize: 5},
		{name: "upper case webp", path: writeFile(t, dir, "b.WEBP", "1"), wantValid: true, wantSize: 1},
		{name: "text file", path: writeFile(t, dir, "c.txt", "12"), wantSize: 2, wantError: ErrUnsupportedType.Error()},
		{name: "missing", path: filepath.Join(dir, "nope.jpg"), wantError: ErrFileNotFound.Error()},
		{name: "directory", path: dir, wantError: ErrNotAFile.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(tt.path)
			assert.Equal(t, tt.wantValid, got.Valid)
			assert.Equal(t, tt.wantSize, got.FileSize)
			if tt.wantError != "" {
				assert.Contains(t, got.Error, tt.wantError)
			} else {
				assert.Empty(t, got.Error)
			}
		})
	}
}
