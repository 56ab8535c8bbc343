package exception

import (
	"os"
	"runtime/debug"

	"strainchain/logx"
	"strainchain/monitoring"
)

// SafeGo runs fn on its own goroutine and swallows panics after logging
// them. Mining tasks run under this wrapper so a backend crash never
// takes down the caller's loop.
func SafeGo(name string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				monitoring.IncreasePanicCount()
				logx.Error("PANIC", name, r, string(debug.Stack()))
			}
		}()
		fn()
	}()
}

// SafeGoWithPanic logs the panic and exits; for goroutines the process
// cannot run without.
func SafeGoWithPanic(name string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				monitoring.IncreasePanicCount()
				logx.Error("PANIC", name, r, string(debug.Stack()))
				os.Exit(1)
			}
		}()
		fn()
	}()
}
