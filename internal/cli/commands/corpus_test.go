package commands

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bertiewooster/polars/internal/cli/config"
	"github.com/bertiewooster/polars/internal/corpus"
	"github.com/bertiewooster/polars/pkg/parametric"
)

// setTestConfigEnv points the environment fallback at a temp directory so
// commands executed without the root command cannot touch the working tree.
func setTestConfigEnv(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	config.ResetConfig()
	require.NoError(t, os.Setenv("POLARS_CORPUS_PATH", filepath.Join(tmpDir, "corpus.db")))
	require.NoError(t, os.Setenv("POLARS_OUT_DIR", filepath.Join(tmpDir, "out")))
	t.Cleanup(func() {
		_ = os.Unsetenv("POLARS_CORPUS_PATH")
		_ = os.Unsetenv("POLARS_OUT_DIR")
		_ = os.Unsetenv("POLARS_SEED")
		config.ResetConfig()
	})
	return tmpDir
}

// executeCommand runs cmd with args and returns its combined output.
func executeCommand(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// seedFailures stores n distinct failures and returns their IDs, oldest first.
func seedFailures(t *testing.T, n int) []string {
	t.Helper()

	store, err := corpus.Open(os.Getenv("POLARS_CORPUS_PATH"), nil)
	require.NoError(t, err)

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		require.NoError(t, store.Record(parametric.FailureRecord{
			Time:  base.Add(time.Duration(i) * time.Minute),
			Seed:  uint64(40 + i),
			Repro: fmt.Sprintf("frame.Construct(...) // case %d", i),
			Err:   fmt.Sprintf("duplicate column name %q", fmt.Sprintf("c%d", i)),
		}))
	}

	failures, err := store.List()
	require.NoError(t, err)
	require.NoError(t, store.Close())

	ids := make([]string, len(failures))
	for i, f := range failures {
		ids[i] = f.ID
	}
	return ids
}

func TestCorpusListCommand_Empty(t *testing.T) {
	setTestConfigEnv(t)

	out, err := executeCommand(t, NewCorpusCommand(), "list")
	require.NoError(t, err)
	assert.Equal(t, "(0 failures)\n", out)
}

func TestCorpusListCommand(t *testing.T) {
	setTestConfigEnv(t)
	ids := seedFailures(t, 2)

	out, err := executeCommand(t, NewCorpusCommand(), "list")
	require.NoError(t, err)

	assert.Contains(t, out, shortID(ids[0]))
	assert.Contains(t, out, shortID(ids[1]))
	assert.Contains(t, out, "2026-05-01T12:00:00Z")
	assert.Contains(t, out, `duplicate column name "c0"`)
	assert.Contains(t, out, "(2 failures)")
}

func TestCorpusShowCommand(t *testing.T) {
	setTestConfigEnv(t)
	ids := seedFailures(t, 2)

	out, err := executeCommand(t, NewCorpusCommand(), "show", ids[0])
	require.NoError(t, err)

	assert.Contains(t, out, "ID:    "+ids[0])
	assert.Contains(t, out, "Seed:  40")
	assert.Contains(t, out, `Error: duplicate column name "c0"`)
	assert.Contains(t, out, "frame.Construct(...) // case 0")
}

func TestCorpusShowCommand_Prefix(t *testing.T) {
	setTestConfigEnv(t)
	ids := seedFailures(t, 2)

	out, err := executeCommand(t, NewCorpusCommand(), "show", shortID(ids[1]))
	require.NoError(t, err)
	assert.Contains(t, out, "ID:    "+ids[1])
}

func TestCorpusShowCommand_Ambiguous(t *testing.T) {
	setTestConfigEnv(t)
	seedFailures(t, 2)

	_, err := executeCommand(t, NewCorpusCommand(), "show", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ambiguous failure id")
}

func TestCorpusShowCommand_NotFound(t *testing.T) {
	setTestConfigEnv(t)
	seedFailures(t, 1)

	_, err := executeCommand(t, NewCorpusCommand(), "show", "zzzzzzzz")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failure not found")
}

func TestCorpusClearCommand(t *testing.T) {
	setTestConfigEnv(t)
	seedFailures(t, 3)

	out, err := executeCommand(t, NewCorpusCommand(), "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Cleared 3 failures")

	out, err = executeCommand(t, NewCorpusCommand(), "list")
	require.NoError(t, err)
	assert.Equal(t, "(0 failures)\n", out)
}
