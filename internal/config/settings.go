package config

import (
	"strings"

	"github.com/spf13/cobra"
)

type FlagType int

const (
	FlagTypeString FlagType = iota
	FlagTypeBool
)

type SettingSource int

const (
	SourceYAML SettingSource = iota
	SourceEnv
	SourceFlag
)

type Setter func(cfg *Config, value string) error
type Getter func(cfg *Config) any

type YAMLDoc struct {
	Comment         string
	ExampleValue    string
	CommentedOut    bool
	BlankLineBefore bool
}

// GlobalSetting is the single declarative description of one configurable
// value: its YAML key, environment variable suffix, CLI flag name, and the
// Setter/Getter pair that reaches into a Config. Adding a new knob means
// adding one entry here, not touching three separate parsers.
type GlobalSetting struct {
	YAMLKey  string
	FlagName string
	Short    string
	Usage    string
	Type     FlagType
	Hidden   bool
	Sources  map[SettingSource]bool
	Set      Setter
	Get      Getter
	Doc      YAMLDoc
}

func (s *GlobalSetting) hasSource(src SettingSource) bool {
	if s == nil || s.Sources == nil {
		return true
	}
	return s.Sources[src]
}

func GlobalSettings() []GlobalSetting {
	all := map[SettingSource]bool{SourceYAML: true, SourceEnv: true, SourceFlag: true}

	return []GlobalSetting{
		{
			FlagName: "config",
			Short:    "c",
			Usage:    "Path to config file.",
			Type:     FlagTypeString,
			Sources:  map[SettingSource]bool{SourceEnv: true, SourceFlag: true},
		},
		{
			YAMLKey:  "network_interface",
			FlagName: "interface",
			Short:    "i",
			Usage:    "Network interface to use for scanning (overrides env/config).",
			Type:     FlagTypeString,
			Sources:  all,
			Set:      func(c *Config, v string) error { c.NetworkInterface = v; return nil },
			Get:      func(c *Config) any { return c.NetworkInterface },
			Doc: YAMLDoc{
				Comment:      "Uncomment the next line to bind a specific network interface - uses OS default if not set",
				ExampleValue: "eth0",
				CommentedOut: true,
			},
		},
		{
			YAMLKey:  "scan_timeout",
			FlagName: "timeout",
			Short:    "t",
			Usage:    "Per-engine scan timeout (e.g., 5s).",
			Type:     FlagTypeString,
			Sources:  all,
			Set: func(c *Config, v string) error {
				d, err := parseDuration(v)
				if err != nil {
					return err
				}
				c.ScanTimeout = d
				return nil
			},
			Get: func(c *Config) any { return c.ScanTimeout },
			Doc: YAMLDoc{
				Comment: "Maximum time each engine gets to complete a scan",
			},
		},
		{
			YAMLKey:  "multicast_ttl",
			FlagName: "ttl",
			Usage:    "Multicast TTL / hop limit for outbound probes (1-16).",
			Type:     FlagTypeString,
			Sources:  all,
			Set: func(c *Config, v string) error {
				i, err := parseInt(v)
				if err != nil {
					return err
				}
				c.MulticastTTL = i
				return nil
			},
			Get: func(c *Config) any { return c.MulticastTTL },
			Doc: YAMLDoc{},
		},
		{
			YAMLKey:  "engines.upnp.enabled",
			FlagName: "upnp",
			Usage:    "Enable/disable the UPnP/SSDP engine.",
			Type:     FlagTypeBool,
			Sources:  all,
			Set: func(c *Config, v string) error {
				b, err := parseBool(v)
				if err != nil {
					return err
				}
				c.Engines.UPnP.Enabled = b
				return nil
			},
			Get: func(c *Config) any { return c.Engines.UPnP.Enabled },
		},
		{
			YAMLKey:  "engines.mdns.enabled",
			FlagName: "mdns",
			Usage:    "Enable/disable the mDNS/DNS-SD engine.",
			Type:     FlagTypeBool,
			Sources:  all,
			Set: func(c *Config, v string) error {
				b, err := parseBool(v)
				if err != nil {
					return err
				}
				c.Engines.MDNS.Enabled = b
				return nil
			},
			Get: func(c *Config) any { return c.Engines.MDNS.Enabled },
		},
		{
			YAMLKey:  "engines.wsd.enabled",
			FlagName: "wsd",
			Usage:    "Enable/disable the WS-Discovery engine.",
			Type:     FlagTypeBool,
			Sources:  all,
			Set: func(c *Config, v string) error {
				b, err := parseBool(v)
				if err != nil {
					return err
				}
				c.Engines.WSD.Enabled = b
				return nil
			},
			Get: func(c *Config) any { return c.Engines.WSD.Enabled },
		},
		{
			YAMLKey:  "engines.mqtt.enabled",
			FlagName: "mqtt",
			Usage:    "Enable/disable the MQTT engine.",
			Type:     FlagTypeBool,
			Sources:  all,
			Set: func(c *Config, v string) error {
				b, err := parseBool(v)
				if err != nil {
					return err
				}
				c.Engines.MQTT.Enabled = b
				return nil
			},
			Get: func(c *Config) any { return c.Engines.MQTT.Enabled },
		},
		{
			YAMLKey:  "engines.coap.enabled",
			FlagName: "coap",
			Usage:    "Enable/disable the CoAP engine.",
			Type:     FlagTypeBool,
			Sources:  all,
			Set: func(c *Config, v string) error {
				b, err := parseBool(v)
				if err != nil {
					return err
				}
				c.Engines.CoAP.Enabled = b
				return nil
			},
			Get: func(c *Config) any { return c.Engines.CoAP.Enabled },
		},
		{
			YAMLKey:  "mdns.service_type",
			FlagName: "mdns-service",
			Usage:    "mDNS service type to browse, or \"all\" for the well-known list.",
			Type:     FlagTypeString,
			Sources:  all,
			Set:      func(c *Config, v string) error { c.MDNS.ServiceType = v; return nil },
			Get:      func(c *Config) any { return c.MDNS.ServiceType },
			Doc:      YAMLDoc{Comment: "\"all\" browses _services._dns-sd._udp.local. plus a fixed well-known list"},
		},
		{
			YAMLKey:  "upnp.search_target",
			FlagName: "upnp-st",
			Usage:    "SSDP search target (ST header).",
			Type:     FlagTypeString,
			Sources:  all,
			Set:      func(c *Config, v string) error { c.UPnP.SearchTarget = v; return nil },
			Get:      func(c *Config) any { return c.UPnP.SearchTarget },
		},
		{
			YAMLKey:  "upnp.mx",
			FlagName: "upnp-mx",
			Usage:    "SSDP MX header value, seconds devices should jitter responses over (1-5).",
			Type:     FlagTypeString,
			Sources:  all,
			Set: func(c *Config, v string) error {
				i, err := parseInt(v)
				if err != nil {
					return err
				}
				c.UPnP.MX = i
				return nil
			},
			Get: func(c *Config) any { return c.UPnP.MX },
		},
		{
			YAMLKey:  "mqtt.ports",
			FlagName: "mqtt-ports",
			Usage:    "Comma-separated MQTT ports to probe (e.g., 1883,8883).",
			Type:     FlagTypeString,
			Sources:  all,
			Set: func(c *Config, v string) error {
				ports, err := parseIntSlice(v)
				if err != nil {
					return err
				}
				c.MQTT.Ports = ports
				return nil
			},
			Get: func(c *Config) any { return c.MQTT.Ports },
		},
		{
			YAMLKey:  "enrichment.enabled",
			FlagName: "enrich",
			Usage:    "Enable/disable the post-discovery enrichment pipeline.",
			Type:     FlagTypeBool,
			Sources:  all,
			Set: func(c *Config, v string) error {
				b, err := parseBool(v)
				if err != nil {
					return err
				}
				c.Enrichment.Enabled = b
				return nil
			},
			Get: func(c *Config) any { return c.Enrichment.Enabled },
		},
		{
			YAMLKey:  "enrichment.workers",
			FlagName: "enrich-workers",
			Usage:    "Bounded worker pool size for enrichment.",
			Type:     FlagTypeString,
			Sources:  all,
			Set: func(c *Config, v string) error {
				i, err := parseInt(v)
				if err != nil {
					return err
				}
				c.Enrichment.Workers = i
				return nil
			},
			Get: func(c *Config) any { return c.Enrichment.Workers },
			Doc: YAMLDoc{Comment: "Devices are enriched concurrently, this many at a time"},
		},
	}
}

func settingsByYAMLKey() map[string]*GlobalSetting {
	settings := GlobalSettings()
	m := make(map[string]*GlobalSetting, len(settings))
	for i := range settings {
		if settings[i].YAMLKey != "" {
			m[settings[i].YAMLKey] = &settings[i]
		}
	}
	return m
}

func RegisterGlobalConfigFlags(cmd *cobra.Command, flags *Flags) {
	if flags == nil {
		return
	}
	if flags.Overrides == nil {
		flags.Overrides = map[string]string{}
	}

	for _, s := range GlobalSettings() {
		s := s
		if !s.hasSource(SourceFlag) {
			continue
		}

		if s.FlagName == "config" {
			cmd.PersistentFlags().StringVarP(&flags.ConfigFile, s.FlagName, s.Short, "", s.Usage)
			continue
		}

		switch s.Type {
		case FlagTypeString:
			registerStringSetting(cmd, flags, &s, s.Usage)
		case FlagTypeBool:
			registerBoolSetting(cmd, flags, &s, s.Usage)
		}

		if s.Hidden {
			_ = cmd.PersistentFlags().MarkHidden(s.FlagName)
		}
	}
}

func registerStringSetting(cmd *cobra.Command, flags *Flags, s *GlobalSetting, usage string) {
	if s == nil {
		return
	}

	if s.Short != "" {
		cmd.PersistentFlags().StringP(s.FlagName, s.Short, "", usage)
	} else {
		cmd.PersistentFlags().String(s.FlagName, "", usage)
	}

	cmd.PersistentPreRunE = chainPersistentPreRun(cmd.PersistentPreRunE, func(cmd *cobra.Command, _ []string) error {
		if !cmd.Flags().Changed(s.FlagName) {
			return nil
		}
		val, err := cmd.Flags().GetString(s.FlagName)
		if err != nil {
			return err
		}
		flags.Overrides[s.YAMLKey] = strings.TrimSpace(val)
		return nil
	})
}

func registerBoolSetting(cmd *cobra.Command, flags *Flags, s *GlobalSetting, usage string) {
	if s == nil {
		return
	}

	if s.Short != "" {
		cmd.PersistentFlags().BoolP(s.FlagName, s.Short, false, usage)
	} else {
		cmd.PersistentFlags().Bool(s.FlagName, false, usage)
	}

	cmd.PersistentPreRunE = chainPersistentPreRun(cmd.PersistentPreRunE, func(cmd *cobra.Command, _ []string) error {
		if !cmd.Flags().Changed(s.FlagName) {
			return nil
		}
		val, err := cmd.Flags().GetBool(s.FlagName)
		if err != nil {
			return err
		}
		if val {
			flags.Overrides[s.YAMLKey] = "true"
		} else {
			flags.Overrides[s.YAMLKey] = "false"
		}
		return nil
	})
}

type persistentPreRunE func(cmd *cobra.Command, args []string) error

func chainPersistentPreRun(existing, next persistentPreRunE) persistentPreRunE {
	if existing == nil {
		return next
	}
	return func(cmd *cobra.Command, args []string) error {
		if err := existing(cmd, args); err != nil {
			return err
		}
		return next(cmd, args)
	}
}
