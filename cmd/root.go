package cmd

import (
	"os"

	"github.com/rvh-io/hearsay/internal/config"
	"github.com/spf13/cobra"
)

// appFlags collects CLI flag overrides across every GlobalSetting,
// populated by config.RegisterGlobalConfigFlags and consumed by each
// subcommand's config.LoadForMode call.
var appFlags = &config.Flags{}

var rootCmd = &cobra.Command{
	Use:   "hearsay",
	Short: "Passive local network discovery across five device protocols.",
	Long: `About
hearsay discovers devices on your local network over UPnP/SSDP, mDNS/DNS-SD,
WS-Discovery, MQTT, and CoAP, then enriches what it finds with banner grabs,
OS fingerprinting, and device classification.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

func init() {
	config.RegisterGlobalConfigFlags(rootCmd, appFlags)
	rootCmd.AddCommand(NewScanCommand())
}

// Execute is the entrypoint for the CLI application
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
