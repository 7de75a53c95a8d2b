package recorder

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SmitUplenchwar2687/oscseq/pkg/storage"
)

func TestRecorderDurationCapture(t *testing.T) {
	store := storage.NewMemoryStore(nil)
	res, err := New(store).Capture(context.Background(), Config{
		Host:     "127.0.0.1",
		Channels: []string{"/foo"},
		Duration: 20 * time.Millisecond,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Session.Len())
	assert.Equal(t, 1, store.Len())
}
