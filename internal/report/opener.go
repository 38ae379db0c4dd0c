package report

import (
	"fmt"
	"os/exec"
	"runtime"
)

// Opener opens a document in a viewer. Implementations are best-effort; the
// report stage logs a failed open and moves on.
type Opener interface {
	Open(path string) error
}

// PlatformOpener shells out to the default document opener of the current
// platform.
type PlatformOpener struct{}

// Open launches the platform opener for path.
func (PlatformOpener) Open(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", "", path)
	case "darwin":
		cmd = exec.Command("open", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launch viewer for %s: %w", path, err)
	}
	// Viewers detach; reap the child without caring about its exit status.
	go cmd.Wait()
	return nil
}
