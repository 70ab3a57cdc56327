package output

import (
	"encoding/json"
	"io"
)

// JSONFormatter outputs the report as JSON
type JSONFormatter struct {
	Indent bool
}

func (f *JSONFormatter) Format(report *Report, w io.Writer) error {
	enc := json.NewEncoder(w)
	if f.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(report)
}
