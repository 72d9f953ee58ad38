// Command llmctl probes and exercises the on-device model bridge, either
// in-process or through a built libllmbridge shared library.
package main

import "github.com/blacktop/go-llmbridge/cmd/llmctl/cmd"

func main() {
	cmd.Execute()
}
