package output

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/rvh-io/hearsay/pkg/discovery"
)

// TableFormatter renders a Response as an aligned, human-readable table.
type TableFormatter struct{}

func (f *TableFormatter) Format(w io.Writer, resp *discovery.Response) error {
	rows := Rows(resp)
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "no devices found")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "PROTOCOL\tADDRESS\tPORT\tNAME\tMANUFACTURER\tCATEGORY")
	for _, r := range rows {
		port := ""
		if r.Port != 0 {
			port = strconv.Itoa(r.Port)
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", r.Protocol, r.Address, port, dash(r.FriendlyName), dash(r.Manufacturer), dash(r.Category))
	}
	return tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
