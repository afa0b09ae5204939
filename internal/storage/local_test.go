package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rmfarias/fleetreserve/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestSaveAndRemove(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	assert.NoError(t, err)

	ref, err := store.Save(context.Background(), "dash.JPG", strings.NewReader("image bytes"))
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "/uploads/"))
	assert.True(t, strings.HasSuffix(ref, ".jpg"))

	data, err := os.ReadFile(filepath.Join(store.Dir(), filepath.Base(ref)))
	assert.NoError(t, err)
	assert.Equal(t, "image bytes", string(data))

	assert.NoError(t, store.Remove(context.Background(), ref))
	_, err = os.Stat(filepath.Join(store.Dir(), filepath.Base(ref)))
	assert.True(t, os.IsNotExist(err))
}

func TestSave_rejectsUnknownExtension(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	assert.NoError(t, err)

	for _, name := range []string{"report.pdf", "script.sh", "noext"} {
		_, err := store.Save(context.Background(), name, strings.NewReader("x"))
		var verr *domain.ValidationError
		assert.ErrorAs(t, err, &verr, name)
	}
}

func TestSave_uniqueNames(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	assert.NoError(t, err)

	ref1, err := store.Save(context.Background(), "dash.png", strings.NewReader("a"))
	assert.NoError(t, err)
	ref2, err := store.Save(context.Background(), "dash.png", strings.NewReader("b"))
	assert.NoError(t, err)

	assert.NotEqual(t, ref1, ref2)
}
