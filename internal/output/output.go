// Package output renders a discovery.Response as either a human-readable
// table or JSON.
package output

import (
	"fmt"
	"io"

	"github.com/rvh-io/hearsay/pkg/discovery"
)

type Format int

const (
	FormatTable Format = iota
	FormatJSON
)

// Formatter renders a discovery.Response to w.
type Formatter interface {
	Format(w io.Writer, resp *discovery.Response) error
}

// Row is one flattened, protocol-agnostic line of output: every record
// type reduces to this shape for the table formatter, and the JSON
// formatter ignores it entirely in favor of marshaling resp directly.
type Row struct {
	Protocol     string
	Address      string
	Port         int
	FriendlyName string
	Manufacturer string
	Category     string
}

// Rows flattens every record in resp into display rows, preserving the
// per-protocol order the response itself preserves.
func Rows(resp *discovery.Response) []Row {
	if resp == nil {
		return nil
	}
	var rows []Row
	for _, r := range resp.UPnP {
		rows = append(rows, rowFrom("upnp", r.Address, r.Port, r.Server, r.Fingerprint))
	}
	for _, r := range resp.MDNS {
		addr := r.Hostname
		if len(r.Addresses) > 0 {
			addr = r.Addresses[0]
		}
		rows = append(rows, rowFrom("mdns", addr, r.Port, r.InstanceName, r.Fingerprint))
	}
	for _, r := range resp.WSD {
		rows = append(rows, rowFrom("wsd", r.Address, 0, "", r.Fingerprint))
	}
	for _, r := range resp.MQTT {
		rows = append(rows, rowFrom("mqtt", r.Address, r.Port, r.BrokerName, r.Fingerprint))
	}
	for _, r := range resp.CoAP {
		rows = append(rows, rowFrom("coap", r.Address, r.Port, "", r.Fingerprint))
	}
	return rows
}

func rowFrom(protocol, address string, port int, fallbackName string, fp *discovery.Fingerprint) Row {
	row := Row{Protocol: protocol, Address: address, Port: port, FriendlyName: fallbackName}
	if fp != nil {
		if fp.DeviceCategory != "" {
			row.Category = fp.DeviceCategory
		}
		if fp.Manufacturer != "" {
			row.Manufacturer = fp.Manufacturer
		}
	}
	return row
}

// New returns the Formatter for the given Format.
func New(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{}
	default:
		return &TableFormatter{}
	}
}

// Print writes resp to w using the given format. The table format is
// followed by a one-line summary of how many records were found per
// protocol; JSON output has no summary.
func Print(w io.Writer, resp *discovery.Response, format Format) error {
	if err := New(format).Format(w, resp); err != nil {
		return err
	}
	if format == FormatTable {
		_, err := fmt.Fprintf(w, "\nfound %d device(s): upnp=%d mdns=%d wsd=%d mqtt=%d coap=%d\n",
			resp.Count(), len(resp.UPnP), len(resp.MDNS), len(resp.WSD), len(resp.MQTT), len(resp.CoAP))
		return err
	}
	return nil
}
