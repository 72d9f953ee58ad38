/*
Package llmbridge lets a host application probe for, and call, an on-device
language model without linking against the platform's native AI SDK.

The package is the Go core behind a tiny C-callable shared library
(see cmd/llmbridge). The C surface is frozen:

	int   llm_check_availability(void);
	char* llm_generate(const char* prompt, float temperature, int max_tokens);
	void  llm_free_string(char* ptr);
	char* llm_model_info(void);

# Backends

The actual inference runs behind the Backend interface:

• NoBackend - the placeholder used when no capability exists
• backend/shim - a native platform shim loaded at run time with purego
(Apple FoundationModels, Windows Phi Silica, or another llmbridge build)
• backend/ollama - a local Ollama server

# Basic Usage

	br := llmbridge.New(llmbridge.Static(myBackend))

	if br.Probe(ctx) != llmbridge.Ready {
		// degrade gracefully
	}

	text, err := br.Generate(ctx, llmbridge.Request{
		Prompt:      "Hello",
		Temperature: 0.7,
		MaxTokens:   16,
	})
	if err != nil {
		switch {
		case llmbridge.IsUnavailable(err):
			// capability absent, disabled or not ready
		case llmbridge.IsCallerError(err):
			// MaxTokens <= 0
		default:
			// backend failed for this call
		}
	}

# Availability States

The wire codes are part of the contract and never renumbered:

	0 Ready        capability usable now
	1 NotReady     capability exists but needs setup (model download)
	2 Disabled     turned off by policy or the user
	3 Unsupported  no capability on this hardware/software

Probe never returns anything else. Every internal failure, including a
backend panic, degrades to Unsupported.

# Memory Ownership

Completions are Go strings inside this package. Only the C layer copies them
into malloc'ed buffers, and only llm_free_string frees them, so allocation and
release always use the same allocator regardless of the host's runtime.
Releasing NULL is a no-op. Double release, or releasing a pointer that did not
come from llm_generate or llm_model_info, is undefined.

# Threading

A Bridge is safe for concurrent use. Backends that do not implement
ConcurrentSafe are serialized behind a single lock shared by Probe and
Generate, so for such a backend Probe (and llm_check_availability) waits
until any in-flight generation returns. Probe and Generate are synchronous;
timeouts and cancellation belong to the caller.
*/
package llmbridge
