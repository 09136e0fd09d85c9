package domain

import "io"

// ReportWriter abstracts writing a build's rendered output to a destination:
// a file path, or a caller-supplied writer when none is given.
//
// Implementations live in the service layer.
type ReportWriter interface {
	// Write invokes writeFunc with the destination writer. If outputPath is
	// non-empty, it creates/truncates the file at that path and passes it to
	// writeFunc; otherwise it passes writer unchanged. Implementations may
	// emit a user-facing status line naming the file written.
	Write(writer io.Writer, outputPath string, format OutputFormat, writeFunc func(io.Writer) error) error
}
