// Package core holds process-wide plumbing: goroutine launch with panic recovery
// and the crash path that returns the terminal to a usable state.
package core

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"sync"
)

var (
	crashMu   sync.Mutex
	crashHook func()

	// crashOut and exit are replaced in tests
	crashOut io.Writer = os.Stderr
	exit               = os.Exit
)

// SetCrashHook installs fn to run before the crash report, typically screen.Fini
// A nil fn clears the hook
func SetCrashHook(fn func()) {
	crashMu.Lock()
	defer crashMu.Unlock()
	crashHook = fn
}

// HandleCrash restores the terminal, prints r with a stack trace and exits
func HandleCrash(r any) {
	if r == nil {
		return
	}

	crashMu.Lock()
	hook := crashHook
	crashMu.Unlock()
	if hook != nil {
		hook()
	}

	fmt.Fprintf(crashOut, "\r\n\x1b[31mCRASH: %v\x1b[0m\r\n", r)
	fmt.Fprintf(crashOut, "Stack Trace:\r\n%s\r\n", debug.Stack())
	if f, ok := crashOut.(*os.File); ok {
		f.Sync()
	}
	exit(1)
}

// Go runs fn in a new goroutine with panic recovery
// Use instead of the go keyword so a crashing worker cannot leave the terminal in raw mode
func Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				HandleCrash(r)
			}
		}()
		fn()
	}()
}
