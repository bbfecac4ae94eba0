//go:build linux

package supervisor

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

// Daemonize detaches the process from its controlling terminal. A raw
// double-fork of a live Go runtime is unsafe (goroutine scheduler threads
// don't survive fork() without exec), so this re-execs the current binary
// into a new session via exec.Command with Setsid, which is the
// idiomatic Go substitute for spec.md §4.8's fork/setsid/fork/_exit
// sequence: the effect (detached, session-leaderless grandchild; original
// process exits immediately) is the same even though the implementation
// mechanism differs.
//
// DISPATCHD_DAEMONIZED=1 in the child's environment signals that the
// re-exec already happened, so Daemonize is a no-op there and the process
// continues as the detached child.
func Daemonize() error {
	if os.Getenv("DISPATCHD_DAEMONIZED") == "1" {
		return nil
	}

	exePath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("supervisor: daemonize: resolve executable: %w", err)
	}

	cmd := exec.Command(exePath, os.Args[1:]...)
	cmd.Env = append(os.Environ(), "DISPATCHD_DAEMONIZED=1")
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("supervisor: daemonize: spawn detached child: %w", err)
	}

	os.Exit(0)
	return nil // unreachable; keeps the compiler happy about the return type
}
