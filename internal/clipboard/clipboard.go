// Package clipboard copies rendered previews to the system clipboard.
package clipboard

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// command is a clipboard program and its arguments; the text is fed on stdin.
type command []string

// candidates lists the clipboard programs to try per platform, in order.
var candidates = map[string][]command{
	"linux": {
		{"wl-copy", "--type", "text/plain;charset=utf-8"}, // Wayland
		{"xclip", "-selection", "clipboard"},               // X11
		{"xsel", "--clipboard", "--input"},                 // X11 alternative
	},
	"darwin":  {{"pbcopy"}},
	"windows": {{"clip"}},
}

// lookPath is swapped out in tests.
var lookPath = exec.LookPath

// Copy places text on the system clipboard using the first available tool.
func Copy(text string) error {
	tools, ok := candidates[runtime.GOOS]
	if !ok {
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return copyWith(tools, text)
}

func copyWith(tools []command, text string) error {
	var tried []string
	for _, tool := range tools {
		tried = append(tried, tool[0])
		if _, err := lookPath(tool[0]); err != nil {
			continue
		}
		cmd := exec.Command(tool[0], tool[1:]...)
		cmd.Stdin = strings.NewReader(text)
		if err := cmd.Run(); err == nil {
			return nil
		}
	}
	return fmt.Errorf("no suitable clipboard tool found (tried: %s)", strings.Join(tried, ", "))
}
