package debug

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLog_WritesWhenEnabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "debug.log")
	require.NoError(t, Enable(Options{Path: path}))
	t.Cleanup(Disable)

	Log("board", "trigger %c", 'Q')
	Disable()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	require.Contains(t, out, "Debug logging started")
	require.Contains(t, out, "board")
	require.Contains(t, out, "trigger Q")
}

func TestLog_NoopWhenDisabled(t *testing.T) {
	Disable()
	require.False(t, Enabled())

	// must not panic without a sink
	Log("board", "ignored")
}

func TestLogEvery_OnlyEveryNth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	require.NoError(t, Enable(Options{Path: path}))
	t.Cleanup(Disable)

	for i := 0; i < 7; i++ {
		LogEvery(3, "led", "flush")
	}
	Disable()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, 2, strings.Count(string(data), "flush (every 3"))
}
