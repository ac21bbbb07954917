package clipboard

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestCopyWithNoToolsAvailable(t *testing.T) {
	orig := lookPath
	defer func() { lookPath = orig }()
	lookPath = func(string) (string, error) { return "", errors.New("not found") }

	err := copyWith([]command{{"wl-copy"}, {"xclip"}}, "text")
	if err == nil {
		t.Fatal("expected error when no clipboard tool is available")
	}
	if want := "no suitable clipboard tool found (tried: wl-copy, xclip)"; err.Error() != want {
		t.Errorf("unexpected error:\nwant %q\ngot  %q", want, err.Error())
	}
}

func TestCopyWithFeedsStdin(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell script")
	}
	out := filepath.Join(t.TempDir(), "copied.txt")
	script := filepath.Join(t.TempDir(), "fakeclip")
	if err := os.WriteFile(script, []byte("#!/bin/sh\ncat > \""+out+"\"\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := copyWith([]command{{"missing-tool-xyz"}, {script}}, "merhaba"); err != nil {
		t.Fatalf("copyWith failed: %v", err)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "merhaba" {
		t.Errorf("clipboard received %q, want %q", got, "merhaba")
	}
}
