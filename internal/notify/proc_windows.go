//go:build windows
// +build windows

package notify

import (
	"golang.org/x/sys/windows"
)

// GetExitCodeProcess reports this while the process is running
const stillActive = 259

// processAlive opens the process and checks it has not exited
func processAlive(pid int) bool {
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(pid))
	if err != nil {
		return false
	}
	defer windows.CloseHandle(h)

	var code uint32
	if err := windows.GetExitCodeProcess(h, &code); err != nil {
		return false
	}
	return code == stillActive
}
