//go:build !linux

package supervisor

import "errors"

// Daemonize is unsupported outside Linux: spec.md §4.8's fork/setsid
// sequence is a POSIX-session concept this build doesn't target.
func Daemonize() error {
	return errors.New("supervisor: daemonize is only supported on linux")
}
