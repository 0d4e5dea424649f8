package converter

import (
	"context"
	"fmt"
	"testing"

	"github.com/nconklindev/sweeper/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func csvFile(name, data string) types.UploadedFile {
	return types.UploadedFile{Name: name, Data: []byte(data), Size: int64(len(data))}
}

func formatPtr(f types.Format) *types.Format { return &f }

func TestRun_FullPipeline(t *testing.T) {
	var progress [][2]int
	req := Request{
		File:    csvFile("people.csv", "name,age,city\nAlice,30,Oslo\nBob,,Rome\nAlice,30,Oslo\n"),
		Clean:   []types.CleaningOperation{types.RemoveDuplicateRows, types.FillMissingNumericWithMean},
		Columns: []string{"name", "age"},
		Format:  formatPtr(types.FormatCSV),
		Progress: func(done, total int) {
			progress = append(progress, [2]int{done, total})
		},
	}

	res := Run(context.Background(), req)
	require.NoError(t, res.Err)
	assert.True(t, res.OK())
	assert.NotEmpty(t, res.RunID)

	assert.Equal(t, types.FileInfo{Name: "people.csv", Size: req.File.Size, Rows: 3, Columns: 3}, res.Info)
	assert.Equal(t, []string{"name", "age"}, res.Table.Names())
	assert.Equal(t, 2, res.Table.NumRows())

	require.NotNil(t, res.Export)
	assert.Equal(t, "people.csv", res.Export.FileName)
	assert.Equal(t, types.MimeCSV, res.Export.MimeType)
	assert.Equal(t, "name,age\nAlice,30\nBob,30\n", string(res.Export.Data))

	assert.Equal(t, [][2]int{{1, 5}, {2, 5}, {3, 5}, {4, 5}, {5, 5}}, progress)
}

func TestRun_WithoutExport(t *testing.T) {
	res := Run(context.Background(), Request{File: csvFile("a.csv", "a\n1\n")})

	require.NoError(t, res.Err)
	assert.Nil(t, res.Export)
	assert.Equal(t, 1, res.Table.NumRows())
}

func TestRun_UnsupportedFile(t *testing.T) {
	called := false
	res := Run(context.Background(), Request{
		File:     csvFile("data.txt", "a,b\n1,2\n"),
		Format:   formatPtr(types.FormatCSV),
		Progress: func(int, int) { called = true },
	})

	assert.ErrorIs(t, res.Err, ErrUnsupportedFormat)
	assert.False(t, res.OK())
	assert.Nil(t, res.Table)
	assert.Nil(t, res.Export)
	assert.False(t, called)
}

func TestRun_StopsAtFailingStage(t *testing.T) {
	t.Run("Unknown operation", func(t *testing.T) {
		res := Run(context.Background(), Request{
			File:   csvFile("a.csv", "a\n1\n"),
			Clean:  []types.CleaningOperation{"shuffle"},
			Format: formatPtr(types.FormatCSV),
		})
		assert.ErrorIs(t, res.Err, ErrUnknownOperation)
		assert.NotNil(t, res.Table)
		assert.Nil(t, res.Export)
	})

	t.Run("Unknown column", func(t *testing.T) {
		res := Run(context.Background(), Request{
			File:    csvFile("a.csv", "a\n1\n"),
			Columns: []string{"b"},
			Format:  formatPtr(types.FormatCSV),
		})
		assert.ErrorIs(t, res.Err, ErrUnknownColumn)
		assert.Nil(t, res.Export)
	})
}

func TestRun_EmptyMeanFillIsWarning(t *testing.T) {
	res := Run(context.Background(), Request{
		File:   csvFile("a.csv", "a,b\n1,\n,\n"),
		Clean:  []types.CleaningOperation{types.FillMissingNumericWithMean},
		Format: formatPtr(types.FormatXLSX),
	})

	require.NoError(t, res.Err)
	require.Len(t, res.Warnings, 1)
	assert.ErrorIs(t, res.Warnings[0], ErrEmptyMeanFill)
	assert.Equal(t, "a.xlsx", res.Export.FileName)
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := Run(ctx, Request{File: csvFile("a.csv", "a\n1\n")})
	assert.ErrorIs(t, res.Err, context.Canceled)
	assert.Nil(t, res.Table)
}

func TestRunBatch(t *testing.T) {
	reqs := []Request{
		{File: csvFile("one.csv", "a\n1\n")},
		{File: csvFile("bad.txt", "a\n1\n")},
		{File: csvFile("three.csv", "a\n1\n2\n3\n")},
		{File: csvFile("broken.xlsx", "not a workbook")},
		{File: csvFile("five.csv", "a,b\n1,2\n")},
	}

	for _, workers := range []int{0, 1, 3, 8} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			results := RunBatch(context.Background(), reqs, workers)
			require.Len(t, results, len(reqs))

			for i, res := range results {
				assert.Equal(t, reqs[i].File.Name, res.File.Name)
			}

			assert.True(t, results[0].OK())
			assert.ErrorIs(t, results[1].Err, ErrUnsupportedFormat)
			assert.Equal(t, 3, results[2].Table.NumRows())
			assert.ErrorIs(t, results[3].Err, ErrParseFailure)
			assert.Equal(t, 2, results[4].Table.NumCols())
		})
	}
}

func TestRunBatch_DistinctRunIDs(t *testing.T) {
	reqs := make([]Request, 10)
	for i := range reqs {
		reqs[i] = Request{File: csvFile(fmt.Sprintf("f%d.csv", i), "a\n1\n")}
	}

	seen := make(map[string]bool)
	for _, res := range RunBatch(context.Background(), reqs, 4) {
		seen[res.RunID] = true
	}
	assert.Len(t, seen, len(reqs))
}
