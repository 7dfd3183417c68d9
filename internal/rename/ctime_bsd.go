//go:build darwin || freebsd || netbsd

package rename

import (
	"os"
	"syscall"
	"time"
)

func createdTime(info os.FileInfo) time.Time {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(int64(st.Birthtimespec.Sec), int64(st.Birthtimespec.Nsec))
	}
	return info.ModTime()
}
