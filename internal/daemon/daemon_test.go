package daemon

import (
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDaemon(t *testing.T) *Daemon {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "run", "oculus.pid"))
}

func TestWriteAndReadPID(t *testing.T) {
	d := newTestDaemon(t)

	require.NoError(t, d.WritePID())

	pid, err := d.ReadPID()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)

	running, runningPID, err := d.IsRunning()
	require.NoError(t, err)
	assert.True(t, running)
	assert.Equal(t, os.Getpid(), runningPID)
}

func TestReadPIDMissingFile(t *testing.T) {
	d := newTestDaemon(t)

	pid, err := d.ReadPID()
	require.NoError(t, err)
	assert.Zero(t, pid)

	running, _, err := d.IsRunning()
	require.NoError(t, err)
	assert.False(t, running)
}

func TestReadPIDInvalidContent(t *testing.T) {
	d := newTestDaemon(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(d.PIDFile()), 0755))
	require.NoError(t, os.WriteFile(d.PIDFile(), []byte("not-a-pid"), 0644))

	_, err := d.ReadPID()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid PID")
}

func TestIsRunningRemovesStalePIDFile(t *testing.T) {
	cmd := exec.Command("true")
	require.NoError(t, cmd.Run())
	stalePID := cmd.Process.Pid

	d := newTestDaemon(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(d.PIDFile()), 0755))
	require.NoError(t, os.WriteFile(d.PIDFile(), []byte(strconv.Itoa(stalePID)), 0644))

	running, _, err := d.IsRunning()
	require.NoError(t, err)
	assert.False(t, running)

	_, statErr := os.Stat(d.PIDFile())
	assert.True(t, os.IsNotExist(statErr))
}

func TestStopNotRunning(t *testing.T) {
	d := newTestDaemon(t)

	_, err := d.Stop()
	assert.ErrorIs(t, err, ErrNotRunning)
}

func TestStopSendsSIGTERM(t *testing.T) {
	cmd := exec.Command("sleep", "30")
	require.NoError(t, cmd.Start())
	t.Cleanup(func() { _ = cmd.Process.Kill() })

	d := newTestDaemon(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(d.PIDFile()), 0755))
	require.NoError(t, os.WriteFile(d.PIDFile(), []byte(strconv.Itoa(cmd.Process.Pid)+"\n"), 0644))

	pid, err := d.Stop()
	require.NoError(t, err)
	assert.Equal(t, cmd.Process.Pid, pid)

	state, err := cmd.Process.Wait()
	require.NoError(t, err)
	assert.False(t, state.Success())

	_, statErr := os.Stat(d.PIDFile())
	assert.True(t, os.IsNotExist(statErr))
}

func TestRemovePIDMissingFile(t *testing.T) {
	assert.NoError(t, newTestDaemon(t).RemovePID())
}
