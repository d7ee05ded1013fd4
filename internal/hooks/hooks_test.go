package hooks

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("hooks tests use /bin/sh")
	}
}

func TestEnv_SortedAndPrefixed(t *testing.T) {
	env := Env(map[string]string{
		"UPTIME":           "90.00\n",
		"ALERT_THRESHOLD":  "95.00",
		"VALIDATOR_PUBKEY": " abc ",
	})

	assert.Equal(t, []string{
		"SOLANA_VALIDATOR_DASHBOARD_ALERT_THRESHOLD=95.00",
		"SOLANA_VALIDATOR_DASHBOARD_UPTIME=90.00",
		"SOLANA_VALIDATOR_DASHBOARD_VALIDATOR_PUBKEY=abc",
	}, env)
}

func TestHook_Run_PassesEnv(t *testing.T) {
	skipOnWindows(t)
	out := filepath.Join(t.TempDir(), "out.txt")

	hook := Hook{
		Name:    "write-uptime",
		Command: "/bin/sh",
		Args:    []string{"-c", `echo "$SOLANA_VALIDATOR_DASHBOARD_UPTIME" > ` + out},
	}
	require.NoError(t, hook.Run(context.Background(), map[string]string{"UPTIME": "90.00"}))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "90.00\n", string(data))
}

func TestHook_Run_Failure(t *testing.T) {
	skipOnWindows(t)

	hook := Hook{Name: "fail", Command: "/bin/sh", Args: []string{"-c", "echo nope >&2; exit 3"}}
	err := hook.Run(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fail")
}

func TestRunOnAlert_MustSucceedStopsChain(t *testing.T) {
	skipOnWindows(t)
	marker := filepath.Join(t.TempDir(), "ran")

	h := AlertHooks{OnAlert: Hooks{
		{Name: "first", Command: "/bin/sh", Args: []string{"-c", "exit 1"}, MustSucceed: true},
		{Name: "second", Command: "/bin/sh", Args: []string{"-c", ": > " + marker}},
	}}
	assert.True(t, h.HasOnAlert())

	err := h.RunOnAlert(context.Background(), nil)
	assert.Error(t, err)
	assert.NoFileExists(t, marker)
}

func TestRunOnAlert_ContinuesOnOptionalFailure(t *testing.T) {
	skipOnWindows(t)
	marker := filepath.Join(t.TempDir(), "ran")

	h := AlertHooks{OnAlert: Hooks{
		{Name: "first", Command: "/bin/sh", Args: []string{"-c", "exit 1"}},
		{Name: "second", Command: "/bin/sh", Args: []string{"-c", ": > " + marker}},
	}}

	require.NoError(t, h.RunOnAlert(context.Background(), nil))
	assert.FileExists(t, marker)
}

func TestAlertHooks_Empty(t *testing.T) {
	h := AlertHooks{}
	assert.False(t, h.HasOnAlert())
	assert.NoError(t, h.RunOnAlert(context.Background(), nil))
}
