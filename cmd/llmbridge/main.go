// Command llmbridge is built with -buildmode=c-shared into a dynamic library
// exporting the on-device model bridge to any host that can call flat C
// functions:
//
//	int   llm_check_availability(void);
//	char* llm_generate(const char* prompt, float temperature, int max_tokens);
//	void  llm_free_string(char* ptr);
//	char* llm_model_info(void);
//
// Every non-NULL pointer returned here must be released with
// llm_free_string, which frees it with the same allocator that produced it.
//
//	go build -buildmode=c-shared -o libllmbridge.so ./cmd/llmbridge
package main

/*
#include <stdlib.h>
*/
import "C"
import (
	"unsafe"

	"github.com/blacktop/go-llmbridge"
	"github.com/blacktop/go-llmbridge/internal/cstr"
)

// llm_check_availability returns 0=Ready, 1=NotReady, 2=Disabled,
// 3=Unsupported. It never returns anything else.
//
//export llm_check_availability
func llm_check_availability() (code C.int) {
	defer func() {
		if r := recover(); r != nil {
			code = C.int(llmbridge.Unsupported.Code())
		}
	}()
	return C.int(current().availability())
}

// llm_generate returns a newly allocated completion or NULL. The prompt
// is read, never retained, mutated or freed.
//
//export llm_generate
func llm_generate(prompt *C.char, temperature C.float, maxTokens C.int) (out *C.char) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
		}
	}()
	if prompt == nil {
		return nil
	}
	return (*C.char)(current().generate(cstr.GoString(unsafe.Pointer(prompt)), float64(temperature), int(maxTokens)))
}

// llm_free_string releases a buffer from llm_generate or llm_model_info.
// NULL is a no-op. Releasing anything twice is undefined.
//
//export llm_free_string
func llm_free_string(ptr *C.char) {
	cstr.Free(unsafe.Pointer(ptr))
}

// llm_model_info returns the served model as JSON, or NULL.
//
//export llm_model_info
func llm_model_info() (out *C.char) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
		}
	}()
	return (*C.char)(current().modelInfo())
}

func main() {
	// Required for c-shared build mode, never run when loaded as a library.
}
