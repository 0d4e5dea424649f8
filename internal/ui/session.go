package ui

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/nconklindev/sweeper/internal/converter"
	"github.com/nconklindev/sweeper/internal/types"
)

// session is the per-file form state: which cleaning steps were
// requested, which columns are kept, and the export target. The table
// shown is always the result of re-running the pipeline from the
// original bytes with the current choices.
type session struct {
	path  string
	file  types.UploadedFile
	table *types.Table
	info  types.FileInfo
	err   error

	current *types.Table
	viewErr error

	cleanEnabled bool
	ops          []types.CleaningOperation
	warnings     []error

	columns  []string
	selected map[int]bool

	showChart bool
	format    types.Format

	output string
}

func newSession(path string) *session {
	return &session{
		path:     path,
		selected: make(map[int]bool),
		format:   types.FormatCSV,
	}
}

// load reads the file and runs the load stage only.
func (s *session) load(ctx context.Context) {
	s.info = types.FileInfo{Name: filepath.Base(s.path)}
	file, err := converter.ReadFile(s.path)
	if err != nil {
		s.err = err
		return
	}
	s.file = file
	s.info = types.FileInfo{Name: file.Name, Size: file.Size}

	res := converter.Run(ctx, converter.Request{File: file})
	if res.Err != nil {
		s.err = res.Err
		return
	}
	s.table = res.Table
	s.info = res.Info
	s.columns = res.Table.Names()
	s.selectAll(true)
	s.current = s.table
}

// addOp records a cleaning step, in the order requested.
func (s *session) addOp(ctx context.Context, op types.CleaningOperation) {
	s.ops = append(s.ops, op)
	s.refresh(ctx)
}

// refresh re-runs the pipeline without export so current reflects the
// cleaning and column choices.
func (s *session) refresh(ctx context.Context) {
	res := converter.Run(ctx, s.request(nil))
	s.current = res.Table
	s.warnings = res.Warnings
	s.viewErr = res.Err
}

// request builds the pipeline request for the current choices.
func (s *session) request(format *types.Format) converter.Request {
	var ops []types.CleaningOperation
	if s.cleanEnabled {
		ops = s.ops
	}
	return converter.Request{
		File:    s.file,
		Clean:   ops,
		Columns: s.selectedColumns(),
		Format:  format,
	}
}

// selectedColumns returns nil when every column is kept, so the pipeline
// applies its default, and the chosen names in file order otherwise.
func (s *session) selectedColumns() []string {
	names := make([]string, 0, len(s.columns))
	for i, name := range s.columns {
		if s.selected[i] {
			names = append(names, name)
		}
	}
	if len(names) == len(s.columns) {
		return nil
	}
	return names
}

func (s *session) selectAll(on bool) {
	for i := range s.columns {
		s.selected[i] = on
	}
}

// outputPath places the export next to the source file. When that would
// overwrite the source, "_converted" is added to the name.
func (s *session) outputPath(name string) string {
	dir := filepath.Dir(s.path)
	out := filepath.Join(dir, name)
	if abs, err := filepath.Abs(out); err == nil {
		if src, err := filepath.Abs(s.path); err == nil && abs == src {
			ext := filepath.Ext(name)
			out = filepath.Join(dir, strings.TrimSuffix(name, ext)+"_converted"+ext)
		}
	}
	return out
}

// save writes an export to disk and remembers where it went.
func (s *session) save(out *types.ExportResult) error {
	path := s.outputPath(out.FileName)
	if err := os.WriteFile(path, out.Data, 0o644); err != nil {
		return err
	}
	s.output = path
	return nil
}
