package service

import (
	"io"

	"github.com/goccy/go-json"
	"github.com/johbar/docx-field-service/internal/fields"
)

// PrintReport writes the JSON report of a file to w.
// When path is "-", the package is read from stdin.
func (s *Service) PrintReport(path string, unit int, stdin io.Reader, w io.Writer) error {
	var rep *fields.Report
	var err error
	if path == "-" {
		data, readErr := io.ReadAll(stdin)
		if readErr != nil {
			return readErr
		}
		rep, err = s.ReportFromBytes("<stdin>", data, UploadParams{Unit: unit})
	} else {
		rep, err = s.Report(ReportParams{Path: path, Unit: unit, NoCache: true})
	}
	if err != nil {
		s.log.Error("Could not process document", "path", path, "err", err)
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(rep)
}
