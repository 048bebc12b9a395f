//go:build linux

package storage

import "os"

// The Secret Service lives on the session bus, which needs a desktop session.
func platformAvailable() bool {
	return os.Getenv("DBUS_SESSION_BUS_ADDRESS") != "" ||
		os.Getenv("DISPLAY") != "" ||
		os.Getenv("WAYLAND_DISPLAY") != ""
}

func platformHeadless() bool {
	if os.Getenv("SSH_TTY") != "" || os.Getenv("CI") != "" {
		return true
	}
	return os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == ""
}
