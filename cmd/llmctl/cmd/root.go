/*
Copyright © 2025 blacktop

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/apex/log"
	clihander "github.com/apex/log/handlers/cli"
	"github.com/spf13/cobra"

	"github.com/blacktop/go-llmbridge"
	"github.com/blacktop/go-llmbridge/backend/shim"
	"github.com/blacktop/go-llmbridge/internal/backends"
	"github.com/blacktop/go-llmbridge/internal/config"
)

func init() {
	log.SetHandler(clihander.Default)

	// Add global flags that all subcommands can inherit
	rootCmd.PersistentFlags().BoolP("verbose", "V", false, "Show debug logs")
	rootCmd.PersistentFlags().StringP("lib", "l", "", "Load a built libllmbridge through its C interface instead of running in-process")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file (default $LLMBRIDGE_CONFIG or ~/.config/llmbridge/config.toml)")

	// Settings
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "llmctl",
	Short: "Probe and query the on-device language model bridge",
}

// SetupSlog configures slog based on the verbose flag
func SetupSlog(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: false, // Keep it clean for CLI usage
	})
	slog.SetDefault(slog.New(handler))
	slog.Debug("Go debug logging enabled")
}

// session is a bridge opened for one command run.
type session struct {
	bridge *llmbridge.Bridge
	lib    *shim.Library // set when running through the C interface
}

func (s *session) Close() {
	if s.lib != nil {
		if err := s.lib.Close(); err != nil {
			log.WithError(err).Debug("failed to unload library")
		}
	}
}

// openSession builds the bridge the command will talk to.
func openSession(cmd *cobra.Command) (*session, error) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	SetupSlog(verbose)

	libPath, _ := cmd.Flags().GetString("lib")
	if libPath != "" {
		lib, err := shim.Open(libPath, shim.Bridge)
		if err != nil {
			return nil, err
		}
		log.WithField("path", lib.Path()).Debug("loaded bridge library")
		return &session{
			bridge: llmbridge.New(llmbridge.Static(lib), llmbridge.WithLogger(slog.Default())),
			lib:    lib,
		}, nil
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log.WithField("backend", cfg.Backend).Debug("running in-process")
	return &session{
		bridge: llmbridge.New(backends.Opener(cfg, slog.Default()), llmbridge.WithLogger(slog.Default())),
	}, nil
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = config.Path()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	log.WithField("config", path).Debug("loaded config")
	return cfg, nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}
