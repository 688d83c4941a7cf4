package adapters

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"manifest-diff/internal/ports"
)

// OutputFileAdapter writes the rendered report either to a file or, when
// no path is configured, to the attached writer (stdout for the CLI).
type OutputFileAdapter struct {
	Path   string
	Writer io.Writer
}

func NewOutputFileAdapter(path string) OutputFileAdapter {
	return OutputFileAdapter{Path: path, Writer: os.Stdout}
}

func (a OutputFileAdapter) WriteReport(text string) error {
	if a.Path == "" {
		writer := a.Writer
		if writer == nil {
			writer = os.Stdout
		}
		if _, err := fmt.Fprintln(writer, text); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to write report").
				WithCause(err)
		}
		return nil
	}
	if dir := filepath.Dir(a.Path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to create output directory").
				WithCause(err)
		}
	}
	return os.WriteFile(a.Path, []byte(text), 0644)
}

var _ ports.OutputPort = OutputFileAdapter{}
