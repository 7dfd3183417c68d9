//go:build !linux && !darwin && !freebsd && !netbsd && !windows

package rename

import (
	"os"
	"time"
)

func createdTime(info os.FileInfo) time.Time {
	return info.ModTime()
}
