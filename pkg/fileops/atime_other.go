//go:build !linux && !freebsd

package fileops

import (
	"os"
	"time"
)

func accessTime(path string, info os.FileInfo) time.Time {
	return info.ModTime()
}
