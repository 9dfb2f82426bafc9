package cache_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelpilot/autocore/internal/cache"
	"github.com/pixelpilot/autocore/internal/domain"
)

type fakeLoader struct {
	loads map[string]int
}

func (f *fakeLoader) Load(id string) (*domain.Bitmap, error) {
	if f.loads == nil {
		f.loads = make(map[string]int)
	}
	f.loads[id]++
	return domain.NewBitmap(1, 1), nil
}

func TestReferenceFrameCachesAfterFirstLoad(t *testing.T) {
	loader := &fakeLoader{}
	c := cache.New(loader, 4)

	_, err := c.ReferenceFrame("f1")
	require.NoError(t, err)
	_, err = c.ReferenceFrame("f1")
	require.NoError(t, err)

	assert.Equal(t, 1, loader.loads["f1"])
}

func TestReferenceFrameEvictsLeastRecentlyUsed(t *testing.T) {
	loader := &fakeLoader{}
	c := cache.New(loader, 2)

	for _, id := range []string{"f1", "f2"} {
		_, err := c.ReferenceFrame(id)
		require.NoError(t, err)
	}
	// Touch f1 so f2 becomes the least recently used.
	_, err := c.ReferenceFrame("f1")
	require.NoError(t, err)
	_, err = c.ReferenceFrame("f3")
	require.NoError(t, err)

	assert.Equal(t, 2, c.Len())

	_, err = c.ReferenceFrame("f2")
	require.NoError(t, err)
	assert.Equal(t, 2, loader.loads["f2"], "f2 should have been evicted and reloaded")
}

func TestReferenceFrameWrapsLoaderError(t *testing.T) {
	c := cache.New(failingLoader{}, 4)
	_, err := c.ReferenceFrame("missing")
	require.Error(t, err)
}

type failingLoader struct{}

func (failingLoader) Load(id string) (*domain.Bitmap, error) {
	return nil, fmt.Errorf("no such frame %q", id)
}
