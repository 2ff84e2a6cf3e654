//go:build windows

package execproc

import (
	"syscall"

	"golang.org/x/sys/windows"
)

func openCommand(target string) (string, []string) {
	// The empty argument is start's window title.
	return "cmd", []string{"/c", "start", "", target}
}

func detachedAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		CreationFlags: windows.CREATE_NEW_PROCESS_GROUP | windows.DETACHED_PROCESS,
	}
}
