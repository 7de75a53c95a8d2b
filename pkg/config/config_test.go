package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteExampleAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oscseq.yaml")
	require.NoError(t, WriteExample(path))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
