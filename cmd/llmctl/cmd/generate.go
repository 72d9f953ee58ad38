package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/apex/log"
	"github.com/spf13/cobra"

	"github.com/blacktop/go-llmbridge"
)

var (
	temperature float64
	maxTokens   int
	timeout     time.Duration
	rawOutput   bool
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:     "generate [prompt]",
	Aliases: []string{"gen", "quest"},
	Short:   "Generate a completion from the on-device model",
	Long: `Send a single prompt to the on-device model and print its completion.
Nothing is retained between calls.`,
	Example: `  # Basic prompt
  llmctl generate "Tell me about machine learning"

  # Control creativity and length
  llmctl generate --temp 0.0 --max-tokens 32 "What is 2+2?"

  # Go through a built shared library
  llmctl --lib ./libllmbridge.so generate "Hello"

  # Plain output for scripts
  llmctl generate --raw "Summarize Go interfaces" > out.txt`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prompt := args[0]

		sess, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer sess.Close()

		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		info := sess.bridge.Model(ctx)
		if !info.Available {
			return fmt.Errorf("no on-device model available (status: %d): %s", info.State.Code(), info.Reason)
		}
		log.WithFields(log.Fields{
			"model":       info.ID,
			"temperature": temperature,
			"max_tokens":  maxTokens,
		}).Debug("generating")

		req := llmbridge.Request{Prompt: prompt, Temperature: temperature, MaxTokens: maxTokens}

		if rawOutput {
			text, err := sess.bridge.Generate(ctx, req)
			if err != nil {
				return err
			}
			fmt.Println(text)
			return nil
		}

		tr := newTranscript()
		tr.Prompt(prompt)
		tr.Typing(info.Name)

		start := time.Now()
		text, err := sess.bridge.Generate(ctx, req)
		tr.Done()
		if err != nil {
			return err
		}
		tr.Reply(info.Name, text)

		fmt.Printf("\nModel: %s  Elapsed: %s\n", info.ID, time.Since(start).Round(time.Millisecond))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().Float64VarP(&temperature, "temp", "t", 0.7, "Temperature for generation (0.0=deterministic, 1.0=creative)")
	generateCmd.Flags().IntVarP(&maxTokens, "max-tokens", "m", llmbridge.DefaultMaxTokens, "Upper bound on generated tokens")
	generateCmd.Flags().DurationVar(&timeout, "timeout", 0, "Abort generation after this long (0 waits indefinitely)")
	generateCmd.Flags().BoolVarP(&rawOutput, "raw", "r", false, "Print only the completion text")
}
