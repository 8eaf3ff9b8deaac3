package kokkosp

import "golang.org/x/sys/unix"

// thread_selfid returns the system-wide unique id of the calling kernel thread.
func currentThreadID() int {
	tid, _, _ := unix.Syscall(unix.SYS_THREAD_SELFID, 0, 0, 0)
	return int(tid)
}
