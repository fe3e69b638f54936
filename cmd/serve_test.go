package cmd

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestFilterDetachArg(t *testing.T) {
	got := filterDetachArg([]string{"serve", "--detach", "--addr", ":9000", "--detach=true"})
	want := []string{"serve", "--addr", ":9000"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("filterDetachArg = %v, want %v", got, want)
	}
}

func TestPIDFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demandcast.pid")
	if err := writePID(path, 4242); err != nil {
		t.Fatal(err)
	}
	pid, err := readPID(path)
	if err != nil || pid != 4242 {
		t.Fatalf("readPID = %d, %v", pid, err)
	}

	if err := os.WriteFile(path, []byte("nope\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := readPID(path); err == nil {
		t.Error("expected error for malformed pid file")
	}
}

func TestEnsureServerNotRunning(t *testing.T) {
	dir := t.TempDir()
	if err := ensureServerNotRunning(filepath.Join(dir, "missing.pid")); err != nil {
		t.Errorf("missing pid file: %v", err)
	}

	self := filepath.Join(dir, "self.pid")
	if err := writePID(self, os.Getpid()); err != nil {
		t.Fatal(err)
	}
	if err := ensureServerNotRunning(self); err == nil {
		t.Error("expected error while our own pid is alive")
	}
}

func TestStateRoundTrip(t *testing.T) {
	path := statePath(filepath.Join(t.TempDir(), "demandcast.pid"))
	in := serverRuntimeState{PID: 7, Addr: "127.0.0.1:9999", StartedAt: time.Now().UTC().Truncate(time.Second), InboxDir: "/srv/inbox"}
	if err := writeState(path, in); err != nil {
		t.Fatal(err)
	}
	out, err := readState(path)
	if err != nil {
		t.Fatal(err)
	}
	if !out.StartedAt.Equal(in.StartedAt) || out.Addr != in.Addr || out.PID != in.PID || out.InboxDir != in.InboxDir {
		t.Errorf("readState = %+v, want %+v", out, in)
	}
}

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"AIzaSyA1234567890abcdef", "AIzaSyA1...cdef"},
		{"abcdefgh", "abcd..."},
		{"abc", "****"},
	}
	for _, tt := range tests {
		if got := maskAPIKey(tt.in); got != tt.want {
			t.Errorf("maskAPIKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
