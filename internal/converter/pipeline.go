package converter

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nconklindev/sweeper/internal/logging"
	"github.com/nconklindev/sweeper/internal/types"
	"golang.org/x/sync/errgroup"
)

// Request lists the stages to run for one file, in order: load, each
// cleaning operation as given, projection, then export if Format is set.
type Request struct {
	File types.UploadedFile
	// Clean operations run in the order listed.
	Clean []types.CleaningOperation
	// Columns selects the output columns. nil keeps every column.
	Columns []string
	// Format is the export target. nil skips export.
	Format *types.Format
	// Progress, when set, is called after each completed stage.
	Progress func(done, total int)
}

// stages returns how many stages the request runs.
func (r Request) stages() int {
	n := 2 + len(r.Clean)
	if r.Format != nil {
		n++
	}
	return n
}

// Result is the outcome of one file's pipeline. Err is set when a stage
// failed; stages after it did not run.
type Result struct {
	RunID    string
	File     types.UploadedFile
	Info     types.FileInfo
	Table    *types.Table
	Warnings []error
	Export   *types.ExportResult
	Err      error
}

// OK reports whether every requested stage succeeded.
func (r *Result) OK() bool { return r.Err == nil }

// Run executes the request. It never panics on bad input; all failures
// are returned in Result.Err.
func Run(ctx context.Context, req Request) *Result {
	res := &Result{RunID: uuid.NewString(), File: req.File}
	logger := logging.WithFields(ctx, "run_id", res.RunID, "file", req.File.Name)
	start := time.Now()

	total, done := req.stages(), 0
	step := func() {
		done++
		if req.Progress != nil {
			req.Progress(done, total)
		}
	}

	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	t, err := LoadFile(req.File)
	if err != nil {
		logger.Warn("load failed", "error", err)
		res.Err = err
		return res
	}
	res.Info = Summarize(req.File, t)
	step()
	logger.Debug("file loaded", "rows", t.NumRows(), "columns", t.NumCols())

	for _, op := range req.Clean {
		before := t.NumRows()
		cleaned, warnings, err := Apply(t, op)
		if err != nil {
			logger.Warn("cleaning failed", "op", op, "error", err)
			res.Table = t
			res.Err = err
			return res
		}
		for _, w := range warnings {
			logger.Warn("cleaning warning", "op", op, "warning", w)
		}
		res.Warnings = append(res.Warnings, warnings...)
		t = cleaned
		step()
		logger.Debug("cleaning applied", "op", op, "rows_before", before, "rows_after", t.NumRows())
	}

	projected, err := Project(t, req.Columns)
	if err != nil {
		logger.Warn("projection failed", "error", err)
		res.Table = t
		res.Err = err
		return res
	}
	t = projected
	res.Table = t
	step()

	if req.Format != nil {
		out, err := Export(t, *req.Format, req.File.Name)
		if err != nil {
			logger.Error("export failed", "format", *req.Format, "error", err)
			res.Err = err
			return res
		}
		res.Export = out
		step()
		logger.Info("file converted",
			"format", *req.Format,
			"output", out.FileName,
			"bytes", len(out.Data),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}

	return res
}

// RunBatch runs every request independently and returns results in
// request order. A failing file never affects the others. workers bounds
// how many files are processed at once; values below 2 run sequentially.
func RunBatch(ctx context.Context, reqs []Request, workers int) []*Result {
	results := make([]*Result, len(reqs))

	if workers < 2 {
		for i, req := range reqs {
			results[i] = Run(ctx, req)
		}
		return results
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i, req := range reqs {
		g.Go(func() error {
			results[i] = Run(ctx, req)
			return nil
		})
	}
	_ = g.Wait()

	return results
}
