//go:build cgo

// Package cstr owns every C string handed across the bridge boundary.
//
// Alloc and Free both go through the C allocator linked into this image,
// so a buffer allocated here must be freed here and nowhere else.
package cstr

/*
#include <stdlib.h>
*/
import "C"
import (
	"errors"
	"strings"
	"unsafe"
)

// ErrEmbeddedNUL is returned when a string cannot be represented as a C
// string without truncation.
var ErrEmbeddedNUL = errors.New("string contains NUL byte")

// Alloc copies s into a newly malloc'ed NUL-terminated buffer. The caller
// owns the buffer until it is passed to Free.
func Alloc(s string) (unsafe.Pointer, error) {
	if strings.IndexByte(s, 0) >= 0 {
		return nil, ErrEmbeddedNUL
	}
	return unsafe.Pointer(C.CString(s)), nil
}

// Free returns a buffer from Alloc to the allocator. Free(nil) is a no-op.
// Freeing the same buffer twice, or a buffer from elsewhere, is undefined.
func Free(p unsafe.Pointer) {
	if p == nil {
		return
	}
	C.free(p)
}

// GoString copies a NUL-terminated C string into Go memory.
// A nil pointer yields the empty string.
func GoString(p unsafe.Pointer) string {
	if p == nil {
		return ""
	}
	return C.GoString((*C.char)(p))
}
