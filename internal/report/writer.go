package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bettyprotocol/betty-drift/internal/drift"
	drifterrors "github.com/bettyprotocol/betty-drift/internal/errors"
	"github.com/bettyprotocol/betty-drift/internal/metrics"
)

// createFile opens a new file exclusively; replaced in tests
var createFile = func(p string) (io.WriteCloser, error) {
	return os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
}

// maxCollisionSuffix bounds the search for a free file name
const maxCollisionSuffix = 10000

// Writer writes report files into a directory without overwriting
type Writer struct {
	Dir     string
	Metrics *metrics.Metrics
}

// NewWriter creates a Writer for dir
func NewWriter(dir string, m *metrics.Metrics) *Writer {
	return &Writer{Dir: dir, Metrics: m}
}

// BaseName returns drift_report_<YYYY-MM-DD>_<sha> for a report
func BaseName(r *drift.Report) string {
	return fmt.Sprintf("drift_report_%s_%s", r.GeneratedAt.Format("2006-01-02"), r.RepoSHA)
}

// JSON renders the machine-readable report
func JSON(r *drift.Report) ([]byte, error) {
	return json.MarshalIndent(r.ToDocument(), "", "  ")
}

// SARIF renders the report as SARIF 2.1.0
func SARIF(r *drift.Report) ([]byte, error) {
	return json.MarshalIndent(r.ToSARIF(), "", "  ")
}

// Render returns the content of the report for one extension
func Render(r *drift.Report, ext string) ([]byte, error) {
	switch ext {
	case "md":
		return []byte(Markdown(r)), nil
	case "json":
		return JSON(r)
	case "sarif":
		return SARIF(r)
	}
	return nil, fmt.Errorf("unknown report extension %q", ext)
}

// Write renders and writes every file for format, returning the paths
// written in order.
func (w *Writer) Write(r *drift.Report, format Format) ([]string, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return nil, drifterrors.NewReportWriteError(w.Dir, err)
	}

	var paths []string
	for _, ext := range format.Extensions() {
		data, err := Render(r, ext)
		if err != nil {
			return paths, drifterrors.NewReportWriteError(w.Dir, err)
		}
		p, err := writeNew(w.Dir, BaseName(r), ext, data)
		if err != nil {
			return paths, drifterrors.NewReportWriteError(p, err)
		}
		w.Metrics.RecordReport(ext)
		paths = append(paths, p)
	}
	return paths, nil
}

// writeNew writes data to <dir>/<base>.<ext>, or the first free
// <base>_<n>.<ext> with n from 1. Existing files are never overwritten.
func writeNew(dir, base, ext string, data []byte) (string, error) {
	for n := 0; n < maxCollisionSuffix; n++ {
		name := base + "." + ext
		if n > 0 {
			name = fmt.Sprintf("%s_%d.%s", base, n, ext)
		}
		p := filepath.Join(dir, name)

		f, err := createFile(p)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return p, err
		}
		_, err = f.Write(data)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			// a partial file would hold the name on the next run
			os.Remove(p)
			return p, err
		}
		return p, nil
	}
	return filepath.Join(dir, base+"."+ext), fmt.Errorf("no free file name after %d attempts", maxCollisionSuffix)
}
