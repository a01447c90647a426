// Package share is the sharing/file-open collaborator: it hands exported
// files to the platform and opens URLs in the default browser.
package share

import (
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Sharer delivers an exported file to the user.
type Sharer interface {
	Share(name, mimeType string, data []byte) (string, error)
}

// FileSharer writes shared files into a directory and reports their path.
type FileSharer struct {
	Dir string
}

// NewFileSharer creates a sharer rooted at dir, defaulting to the working
// directory.
func NewFileSharer(dir string) *FileSharer {
	if dir == "" {
		dir = "."
	}
	return &FileSharer{Dir: dir}
}

// Share writes data under the sharer's directory and returns the full path.
func (f *FileSharer) Share(name, mimeType string, data []byte) (string, error) {
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create share dir %s: %w", f.Dir, err)
	}
	path := filepath.Join(f.Dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// CanOpen reports whether raw is a URL this host can hand to a browser.
func CanOpen(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Open launches the default browser for raw.
func Open(raw string) error {
	if !CanOpen(raw) {
		return fmt.Errorf("cannot open %q in browser", raw)
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", raw)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", raw)
	default:
		cmd = exec.Command("xdg-open", raw)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open %s: %w", raw, err)
	}
	return nil
}
