//go:build !windows

package app

import (
	"syscall"

	"github.com/gdamore/tcell/v2"
)

// suspendApp hands the terminal back and stops the process, like a shell's
// job control would. The screen is restored once the process is continued.
func suspendApp(screen tcell.Screen) {
	if screen.Suspend() != nil {
		return
	}
	defer screen.Resume()

	_ = syscall.Kill(syscall.Getpid(), syscall.SIGSTOP)
}
