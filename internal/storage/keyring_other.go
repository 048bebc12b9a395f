//go:build !darwin && !linux

package storage

import (
	"os"
	"runtime"
)

func platformAvailable() bool {
	return runtime.GOOS == "windows"
}

func platformHeadless() bool {
	return os.Getenv("CI") != ""
}
