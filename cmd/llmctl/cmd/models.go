package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/apex/log"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/blacktop/go-llmbridge"
	"github.com/blacktop/go-llmbridge/backend/shim"
	"github.com/blacktop/go-llmbridge/internal/backends"
)

type candidate struct {
	Backend string              `json:"backend"`
	Path    string              `json:"path,omitempty"`
	Error   string              `json:"error,omitempty"`
	Model   llmbridge.ModelInfo `json:"model"`
}

// modelsCmd represents the models command
var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List every backend this machine could use",
	Long: `Probe each native shim dialect and the configured Ollama server and
report what each one would answer. This does not change which backend
the library selects.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		SetupSlog(verbose)

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		ctx := context.Background()

		var found []candidate
		for _, d := range []shim.Dialect{shim.Apple, shim.Windows, shim.Bridge} {
			c := candidate{Backend: d.Name, Model: d.Model}
			path, err := shim.Find(d)
			if err != nil {
				c.Error = err.Error()
				c.Model.State = llmbridge.Unsupported
				c.Model.Reason = llmbridge.Unsupported.Reason()
				found = append(found, c)
				continue
			}
			c.Path = path
			lib, err := shim.Open(path, d)
			if err != nil {
				c.Error = err.Error()
				c.Model.State = llmbridge.Unsupported
				c.Model.Reason = err.Error()
				found = append(found, c)
				continue
			}
			c.Model = llmbridge.New(llmbridge.Static(lib), llmbridge.WithLogger(slog.Default())).Model(ctx)
			if err := lib.Close(); err != nil {
				log.WithError(err).Debug("failed to unload library")
			}
			found = append(found, c)
		}

		if cfg.Ollama.URL != "" {
			client := backends.Ollama(cfg.Ollama)
			configured := llmbridge.New(llmbridge.Static(client), llmbridge.WithLogger(slog.Default())).Model(ctx)
			found = append(found, candidate{Backend: "ollama", Path: cfg.Ollama.URL, Model: configured})

			if configured.State != llmbridge.Unsupported {
				pulled, err := client.ListModels(ctx)
				if err != nil {
					log.WithError(err).Warn("failed to list ollama models")
				}
				for _, m := range pulled {
					if m.Name == cfg.Ollama.Model || m.Name == cfg.Ollama.Model+":latest" {
						found[len(found)-1].Model.Metadata = m.Metadata
						continue
					}
					found = append(found, candidate{Backend: "ollama", Model: m})
				}
			}
		}

		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			data, err := json.MarshalIndent(found, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		}

		ok := color.New(color.FgHiGreen, color.Bold).SprintFunc()
		bad := color.New(color.FgHiRed).SprintFunc()
		for _, c := range found {
			status := bad(c.Model.State.String())
			if c.Model.Available {
				status = ok(c.Model.State.String())
			}
			fmt.Printf("%-8s %-24s %s\n", c.Backend, c.Model.ID, status)
			if c.Path != "" {
				fmt.Printf("         %s\n", c.Path)
			}
			if !c.Model.Available && c.Model.Reason != "" {
				fmt.Printf("         %s\n", c.Model.Reason)
			}
			if details := modelDetails(c.Model.Metadata); details != "" {
				fmt.Printf("         %s\n", details)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)

	modelsCmd.Flags().BoolP("json", "j", false, "Print candidates as JSON")
}

// modelDetails renders the metadata keys worth a glance, in a fixed order.
func modelDetails(md map[string]any) string {
	var parts []string
	for _, key := range []string{"family", "parameter_size", "quantization_level"} {
		if v, ok := md[key].(string); ok && v != "" {
			parts = append(parts, v)
		}
	}
	if n, ok := md["size_bytes"].(int64); ok && n > 0 {
		parts = append(parts, fmt.Sprintf("%.1f GB", float64(n)/1e9))
	}
	return strings.Join(parts, " · ")
}
