package lockfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAcquireAndReleaseLock(t *testing.T) {
	dir := t.TempDir()

	lock, err := AcquireLock(dir)
	if err != nil {
		t.Fatalf("AcquireLock returned error: %v", err)
	}

	lockPath := filepath.Join(dir, LockFileName)
	data, err := os.ReadFile(lockPath)
	if err != nil {
		t.Fatalf("lock file not created: %v", err)
	}
	if want := fmt.Sprintf("pid=%d\n", os.Getpid()); string(data) != want {
		t.Errorf("lock file content = %q, want %q", data, want)
	}

	if err := lock.Release(); err != nil {
		t.Fatalf("Release returned error: %v", err)
	}
	if _, err := os.Stat(lockPath); !os.IsNotExist(err) {
		t.Error("expected lock file removed on release")
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	lock, err := AcquireLock(t.TempDir())
	if err != nil {
		t.Fatalf("AcquireLock returned error: %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("first Release returned error: %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Errorf("second Release returned error: %v", err)
	}
}

func TestAcquireLockCreatesStateDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "state")
	lock, err := AcquireLock(dir)
	if err != nil {
		t.Fatalf("AcquireLock returned error: %v", err)
	}
	defer lock.Release()
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("expected state directory created: %v", err)
	}
}

func TestReacquireAfterRelease(t *testing.T) {
	dir := t.TempDir()
	lock, err := AcquireLock(dir)
	if err != nil {
		t.Fatalf("AcquireLock returned error: %v", err)
	}
	lock.Release()

	again, err := AcquireLock(dir)
	if err != nil {
		t.Fatalf("expected reacquire after release to succeed: %v", err)
	}
	again.Release()
}

func TestExtractPIDFromLockInfo(t *testing.T) {
	cases := []struct {
		content string
		want    int
	}{
		{"pid=1234\n", 1234},
		{"pid=1234", 1234},
		{"pid=", 0},
		{"no pid here", 0},
		{"", 0},
	}
	for _, c := range cases {
		if got := extractPIDFromLockInfo(c.content); got != c.want {
			t.Errorf("extractPIDFromLockInfo(%q) = %d, want %d", c.content, got, c.want)
		}
	}
}

func TestLockErrorMentionsLockPath(t *testing.T) {
	err := &LockError{LockPath: "/tmp/state/goaltrack.lock", ExistingInfo: "PID 42 (running)"}
	msg := err.Error()
	if !strings.Contains(msg, "/tmp/state/goaltrack.lock") || !strings.Contains(msg, "PID 42 (running)") {
		t.Errorf("error message missing details: %q", msg)
	}
}
