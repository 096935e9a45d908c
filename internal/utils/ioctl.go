package utils

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// IOCtl はファイルに対して ioctl を発行する
// Fd() はファイルをブロッキングモードに戻すため SyscallConn 経由で呼び出す
func IOCtl(f *os.File, cmd uintptr, arg uintptr) error {
	conn, err := f.SyscallConn()
	if err != nil {
		return err
	}

	var errno unix.Errno
	err = conn.Control(func(fd uintptr) {
		_, _, errno = unix.Syscall(unix.SYS_IOCTL, fd, cmd, arg)
	})
	if errno != 0 {
		return errors.Join(err, errno)
	}
	return err
}
