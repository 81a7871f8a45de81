/*
Package tmtest runs a tendermint node together with the custodyd
application for integration tests.

Both binaries must be installed. When one is missing the test is skipped,
unless FORCE_TM_TEST=1 is set. Set TM_DEBUG=1 to see the output of all
started processes.
*/
package tmtest

import (
	"context"
	"io/ioutil"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/iov-one/custody/custodytest/assert"
)

// TestReporter is the minimal subset of testing.TB needed to run these test helpers
type TestReporter interface {
	assert.Tester
	Skipf(string, ...interface{})
	Logf(string, ...interface{})
}

// startupDelay is how long a started process is given to open its ports.
const startupDelay = 2 * time.Second

// InitHome creates a temporary home directory prepared with `tendermint
// init`. The app configuration must still be written, see InitApp. Returned
// cleanup function removes the directory.
func InitHome(ctx context.Context, t TestReporter) (home string, cleanup func()) {
	t.Helper()

	tmpath := lookPath(t, "tendermint")
	home, err := ioutil.TempDir("", "tmtest")
	assert.Nil(t, err)
	cleanup = func() { os.RemoveAll(home) }

	cmd := exec.CommandContext(ctx, tmpath, "init", "--home", home)
	if out, err := cmd.CombinedOutput(); err != nil {
		cleanup()
		t.Fatalf("tendermint init: %s\n%s", err, out)
	}
	return home, cleanup
}

// InitApp writes the application state into the genesis file of given home
// directory, by calling `<appName> -home <home> init <args>`.
func InitApp(ctx context.Context, t TestReporter, appName, home string, args ...string) {
	t.Helper()

	appPath := lookPath(t, appName)
	cmd := exec.CommandContext(ctx, appPath, append([]string{"-home", home, "init"}, args...)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("%s init: %s\n%s", appName, err, out)
	}
}

// RunTendermint starts a tendermint process. Returned cleanup function will
// ensure the process has stopped and will block until.
func RunTendermint(ctx context.Context, t TestReporter, home string) (cleanup func()) {
	t.Helper()
	return start(ctx, t, lookPath(t, "tendermint"), "node", "--home", home)
}

// RunApp is like RunTendermint, just executes the application executable,
// assuming a prepared home directory.
func RunApp(ctx context.Context, t TestReporter, appName string, home string) (cleanup func()) {
	t.Helper()
	return start(ctx, t, lookPath(t, appName), "-home", home, "start")
}

func start(ctx context.Context, t TestReporter, path string, args ...string) (cleanup func()) {
	t.Helper()

	cmd := exec.CommandContext(ctx, path, args...)
	if os.Getenv("TM_DEBUG") != "" {
		cmd.Stdout = os.Stderr
		cmd.Stderr = os.Stderr
	}
	if err := cmd.Start(); err != nil {
		t.Fatalf("%s process failed: %s", path, err)
	}

	time.Sleep(startupDelay)
	t.Logf("Running %s pid=%d", path, cmd.Process.Pid)

	// The process is killed when the context is done as well.
	done := make(chan struct{})
	var once sync.Once
	cleanup = func() {
		once.Do(func() {
			t.Logf("%s cleanup called", path)
			_ = cmd.Process.Kill()
			_ = cmd.Wait()
			close(done)
		})
		<-done
	}
	go func() {
		select {
		case <-ctx.Done():
			cleanup()
		case <-done:
		}
	}()
	return cleanup
}

func lookPath(t TestReporter, name string) string {
	t.Helper()
	path, err := exec.LookPath(name)
	if err == nil {
		return path
	}
	if os.Getenv("FORCE_TM_TEST") != "1" {
		t.Skipf("%s binary not found. Set FORCE_TM_TEST=1 to fail this test.", name)
	} else {
		t.Fatalf("%s binary not found. Do not set FORCE_TM_TEST=1 to skip this test.", name)
	}
	return ""
}
