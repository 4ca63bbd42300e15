package port

import "time"

type Sink interface {
	// Report block: header line with timestamp followed by body lines
	WriteReport(ts time.Time, header string, lines []string) error
	// Normal newline (for logs)
	NewLine() error
}
