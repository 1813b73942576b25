package daemonrun_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/billfold/billfold/internal/config"
	"github.com/billfold/billfold/internal/daemonrun"
	"github.com/billfold/billfold/internal/ipc"
)

func TestRunRequiresConfig(t *testing.T) {
	if err := daemonrun.Run(context.Background(), nil, daemonrun.Options{}); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestRunServesIPCAndStopsOnRequest(t *testing.T) {
	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))

	cfgVal := config.Default()
	cfgVal.Paths.InboxDir = filepath.Join(base, "inbox")
	cfgVal.Paths.StagingDir = filepath.Join(base, "staging")
	cfgVal.Paths.LibraryDir = filepath.Join(base, "library")
	cfgVal.Paths.ReviewDir = filepath.Join(base, "review")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfg := &cfgVal

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- daemonrun.Run(ctx, cfg, daemonrun.Options{LogLevel: "debug"})
	}()

	socketPath := filepath.Join(cfg.Paths.LogDir, "billfold.sock")
	deadline := time.Now().Add(10 * time.Second)
	for {
		if _, err := os.Stat(socketPath); err == nil {
			break
		}
		select {
		case err := <-done:
			if err != nil && strings.Contains(err.Error(), "operation not permitted") {
				t.Skipf("unix sockets unavailable: %v", err)
			}
			t.Fatalf("daemon exited before socket appeared: %v", err)
		default:
		}
		if time.Now().After(deadline) {
			t.Fatal("daemon socket never appeared")
		}
		time.Sleep(20 * time.Millisecond)
	}

	client, err := ipc.Dial(socketPath)
	if err != nil {
		t.Fatalf("dial daemon: %v", err)
	}
	status, err := client.Status()
	if err != nil {
		client.Close()
		t.Fatalf("status: %v", err)
	}
	if !status.Running {
		t.Fatalf("expected running workflow, got %+v", status)
	}
	if status.PID != os.Getpid() {
		t.Fatalf("expected pid %d, got %d", os.Getpid(), status.PID)
	}

	pidPath := filepath.Join(cfg.Paths.LogDir, "billfoldd.pid")
	if _, err := os.Stat(pidPath); err != nil {
		t.Fatalf("pid file missing while running: %v", err)
	}

	resp, err := client.Stop()
	client.Close()
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if resp == nil || !resp.Stopped {
		t.Fatalf("stop not acknowledged: %+v", resp)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned error: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("daemon did not shut down after stop request")
	}

	if _, err := os.Stat(pidPath); !os.IsNotExist(err) {
		t.Fatalf("pid file should be removed after shutdown, got %v", err)
	}
}
