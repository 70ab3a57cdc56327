package output

import (
	"fmt"
	"io"
)

// QuietFormatter outputs one-line summary (for batch logs)
type QuietFormatter struct{}

func (f *QuietFormatter) Format(report *Report, w io.Writer) error {
	if report.Test == nil {
		fmt.Fprintf(w, "✅ %s: %d records, %d skipped\n", report.Stage, report.Records, report.Skipped)
		return nil
	}

	mark := "n.s."
	if report.Test.Significant {
		mark = "*"
	}
	fmt.Fprintf(w, "✅ %s: %s %s (p=%.4f), %d records\n",
		report.Stage, report.Test.Name, mark, float64(report.Test.PValue), report.Records)
	return nil
}
