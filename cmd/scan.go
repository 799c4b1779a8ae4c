package cmd

import (
	"context"
	"os"
	"strings"

	"github.com/rvh-io/hearsay/internal/config"
	"github.com/rvh-io/hearsay/internal/output"
	"github.com/rvh-io/hearsay/pkg/discovery"
	"github.com/rvh-io/hearsay/pkg/discovery/orchestrator"
	"github.com/spf13/cobra"
)

var (
	scanJSON    bool
	scanTargets string
)

func NewScanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run a single discovery scan and output results to the console",
		Long: `Run exactly one discovery scan.

By default, all five engines (UPnP, mDNS, WS-Discovery, MQTT, CoAP) run and
the enrichment pipeline enriches whatever they find. Set an engine's flag to
false (for example --coap=false) to disable it.

Examples:
  hearsay scan
  hearsay scan --coap=false --mqtt=false
  hearsay scan --timeout 15s
  hearsay scan --targets 192.168.1.10,192.168.1.20 --json
`,
		RunE: runScan,
	}

	cmd.Flags().BoolVar(&scanJSON, "json", false, "Print results as JSON instead of a table.")
	cmd.Flags().StringVar(&scanTargets, "targets", "", "Comma-separated addresses to seed the MQTT/CoAP engines with.")

	return cmd
}

func runScan(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := config.LoadForMode(config.ModeCLI, appFlags)
	if err != nil {
		return err
	}

	req, err := requestFromConfig(cfg)
	if err != nil {
		return err
	}

	orch := orchestrator.New(orchestrator.WithEnrichmentWorkers(cfg.Enrichment.Workers))

	var spinner *output.Spinner
	if !scanJSON {
		spinner = output.NewSpinner(os.Stdout, "Scanning network...", cfg.ScanTimeout)
		spinner.Start()
	}

	resp, err := orch.Discover(ctx, req)

	if spinner != nil {
		spinner.Stop()
	}

	if err != nil {
		return err
	}

	format := output.FormatTable
	if scanJSON {
		format = output.FormatJSON
	}
	return output.Print(os.Stdout, resp, format)
}

// requestFromConfig translates a loaded Config plus scan-only CLI flags
// into a discovery.Request.
func requestFromConfig(cfg *config.Config) (*discovery.Request, error) {
	var protocols []discovery.Protocol
	if cfg.Engines.UPnP.Enabled {
		protocols = append(protocols, discovery.ProtocolUPnP)
	}
	if cfg.Engines.MDNS.Enabled {
		protocols = append(protocols, discovery.ProtocolMDNS)
	}
	if cfg.Engines.WSD.Enabled {
		protocols = append(protocols, discovery.ProtocolWSD)
	}
	if cfg.Engines.MQTT.Enabled {
		protocols = append(protocols, discovery.ProtocolMQTT)
	}
	if cfg.Engines.CoAP.Enabled {
		protocols = append(protocols, discovery.ProtocolCoAP)
	}

	opts := []discovery.Option{
		discovery.WithProtocols(protocols...),
		discovery.WithTimeout(cfg.ScanTimeout),
		discovery.WithInterface(cfg.NetworkInterface),
		discovery.WithMulticastTTL(cfg.MulticastTTL),
		discovery.WithMDNSServiceType(cfg.MDNS.ServiceType),
		discovery.WithUPnPSearchTarget(cfg.UPnP.SearchTarget),
		discovery.WithUPnPMX(cfg.UPnP.MX),
		discovery.WithMQTTPorts(cfg.MQTT.Ports...),
		discovery.WithEnrichment(cfg.Enrichment.Enabled),
	}

	if targets := splitTargets(scanTargets); len(targets) > 0 {
		opts = append(opts, discovery.WithTargets(targets...))
	}

	return discovery.NewRequest(opts...)
}

func splitTargets(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	targets := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			targets = append(targets, p)
		}
	}
	return targets
}
