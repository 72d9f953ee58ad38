package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blacktop/go-llmbridge"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Display on-device model availability and information",
	Long: `Display whether an on-device language model is usable right now,
which backend serves it, and why it is unavailable if it is not.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer sess.Close()

		info := sess.bridge.Model(context.Background())

		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			// prefer the library's own answer when talking through the C interface
			if sess.lib != nil {
				if raw, ok := sess.lib.ModelInfoJSON(); ok {
					fmt.Println(raw)
					return nil
				}
			}
			data, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		}

		fmt.Println("=== On-Device Model Information ===")
		fmt.Printf("Model Availability: ")
		switch info.State {
		case llmbridge.Ready:
			fmt.Println("✅ Ready")
		case llmbridge.NotReady:
			fmt.Println("⏳ Not ready")
		case llmbridge.Disabled:
			fmt.Println("❌ Disabled")
		default:
			fmt.Println("❌ Unsupported")
		}
		fmt.Printf("Status Code:        %d\n", info.State.Code())

		fmt.Println("\n=== Model Details ===")
		fmt.Printf("ID:       %s\n", info.ID)
		fmt.Printf("Name:     %s\n", info.Name)
		fmt.Printf("Provider: %s\n", info.Provider)
		if sess.lib != nil {
			fmt.Printf("Library:  %s (%s dialect)\n", sess.lib.Path(), sess.lib.Dialect().Name)
		}

		if !info.Available {
			fmt.Printf("\n⚠️  %s\n", info.Reason)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)

	infoCmd.Flags().BoolP("json", "j", false, "Print model information as JSON")
}
