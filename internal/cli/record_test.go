package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SmitUplenchwar2687/oscseq/internal/recorder"
)

func TestProgressBar_RendersCompletion(t *testing.T) {
	var buf bytes.Buffer
	report := progressBar(&buf)
	for step := 1; step <= recorder.ProgressSteps; step++ {
		report(step, recorder.ProgressSteps)
	}

	out := buf.String()
	assert.Contains(t, out, "recording")
	assert.Contains(t, out, "100%")
	assert.True(t, len(out) > 0 && out[len(out)-1] == '\n', "a finished bar ends its line")
}

func TestRecord_DrawsProgressByDefault(t *testing.T) {
	dir := t.TempDir()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"record",
		"--ip", "127.0.0.1",
		"--port", "0",
		"--duration", "30ms",
		"--save-dir", dir,
	})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, errOut.String(), "100%")
	matches, err := filepath.Glob(filepath.Join(dir, "recorded_osc-*.json"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}
