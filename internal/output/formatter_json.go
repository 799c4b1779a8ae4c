package output

import (
	"encoding/json"
	"io"

	"github.com/rvh-io/hearsay/pkg/discovery"
)

// JSONFormatter renders a Response as JSON (indented when Pretty is set;
// New(FormatJSON) returns a non-indenting formatter), matching the wire
// shape external callers (and the HTTP/library surface) consume.
type JSONFormatter struct {
	Pretty bool
}

func (f *JSONFormatter) Format(w io.Writer, resp *discovery.Response) error {
	enc := json.NewEncoder(w)
	if f.Pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(resp)
}
