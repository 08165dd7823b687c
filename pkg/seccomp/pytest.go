package seccomp

import (
	specs "github.com/opencontainers/runtime-spec/specs-go"
)

// PytestProfile returns the filter for a CPython interpreter running a test
// suite. Socket calls are allowed; the container itself has no network.
func PytestProfile() *specs.LinuxSeccomp {
	return NewBuilder().
		// files
		Allow(
			"read", "write", "readv", "writev", "pread64", "pwrite64",
			"open", "openat", "openat2", "close", "close_range", "lseek",
			"stat", "fstat", "lstat", "newfstatat", "statx", "statfs", "fstatfs",
			"access", "faccessat", "faccessat2",
			"getdents", "getdents64", "readlink", "readlinkat",
			"dup", "dup2", "dup3", "fcntl", "ioctl", "flock",
			"pipe", "pipe2", "sendfile", "copy_file_range", "fadvise64",
			"mkdir", "mkdirat", "rmdir", "unlink", "unlinkat",
			"rename", "renameat", "renameat2",
			"chmod", "fchmod", "fchmodat", "utimensat",
			"ftruncate", "fsync", "fdatasync", "umask",
			"getcwd", "chdir", "fchdir",
		).
		// memory
		Allow("brk", "mmap", "munmap", "mprotect", "mremap", "madvise", "mincore", "memfd_create", "membarrier").
		// processes and threads; pytest plugins may fork helpers
		Allow(
			"execve", "execveat", "exit", "exit_group",
			"clone", "clone3", "fork", "vfork", "wait4", "waitid",
			"set_tid_address", "set_robust_list", "get_robust_list", "rseq",
			"futex", "sched_yield", "sched_getaffinity", "sched_getparam", "sched_getscheduler",
			"getpid", "getppid", "gettid", "getpgrp", "getpgid", "setpgid", "getsid", "setsid",
			"kill", "tkill", "tgkill", "pidfd_open", "pidfd_send_signal",
			"prctl", "arch_prctl", "prlimit64", "getrlimit", "getrusage", "times",
		).
		// signals and timers
		Allow(
			"rt_sigaction", "rt_sigprocmask", "rt_sigreturn", "rt_sigsuspend", "sigaltstack",
			"alarm", "setitimer", "getitimer",
			"clock_gettime", "clock_getres", "gettimeofday", "nanosleep", "clock_nanosleep",
		).
		// polling
		Allow("poll", "ppoll", "select", "pselect6", "epoll_create1", "epoll_ctl", "epoll_wait", "epoll_pwait", "eventfd2").
		// identity
		Allow("getuid", "geteuid", "getgid", "getegid", "getresuid", "getresgid", "getgroups", "uname", "sysinfo", "getrandom").
		// local sockets
		Allow(
			"socket", "socketpair", "connect", "bind", "listen", "accept4",
			"sendto", "recvfrom", "sendmsg", "recvmsg", "shutdown",
			"getsockname", "getpeername", "getsockopt", "setsockopt",
		).
		Kill(
			"ptrace", "process_vm_readv", "process_vm_writev",
			"bpf", "perf_event_open", "userfaultfd",
			"init_module", "finit_module", "delete_module", "kexec_load", "kexec_file_load",
			"keyctl", "add_key", "request_key",
		).
		Deny(
			"mount", "umount2", "pivot_root", "chroot",
			"setns", "unshare", "reboot", "swapon", "swapoff",
			"sethostname", "setdomainname", "settimeofday", "adjtimex", "clock_adjtime",
			"personality", "acct", "ioperm", "iopl",
		).
		Build()
}
