// Package test contains assertion helpers reporting the caller position.
package test

import (
	"fmt"
	"runtime"
	"testing"

	"github.com/ava12/sourcer"
)

func fatalf(t *testing.T, message string, params ...any) {
	t.Helper()
	if len(params) > 0 {
		message = fmt.Sprintf(message, params...)
	}
	_, thisFile, _, _ := runtime.Caller(0)
	file := thisFile
	line := 0
	for i := 2; file == thisFile; i++ {
		_, file, line, _ = runtime.Caller(i)
	}
	t.Fatalf("%s at %s:%d", message, file, line)
}

func Assert(t *testing.T, cond bool, message string, params ...any) {
	t.Helper()
	if !cond {
		fatalf(t, message, params...)
	}
}

func Expect(t *testing.T, cond bool, expected, got any) {
	t.Helper()
	if !cond {
		fatalf(t, "expecting %v, got %v", expected, got)
	}
}

func ExpectInt(t *testing.T, expected, got int) {
	t.Helper()
	Expect(t, expected == got, expected, got)
}

// ExpectErrorCode fails unless e is or wraps *sourcer.Error with expected code.
func ExpectErrorCode(t *testing.T, expected int, e error) *sourcer.Error {
	t.Helper()
	if sourcer.HasCode(e, expected) {
		se, _ := sourcer.AsError(e)
		return se
	}

	fatalf(t, "expecting error code %d, got %v", expected, e)
	return nil
}
