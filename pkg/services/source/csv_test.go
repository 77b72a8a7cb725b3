package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCSVSource_Records(t *testing.T) {
	path := writeCSV(t, "date,product,category,amount\n"+
		"2024-01-15,Laptop,Electronics,50000\n"+
		"2024-01-16, Coffee,Food,3000\n")

	src, err := CSVFactory(context.Background(), Config{Path: path})
	require.NoError(t, err)

	records, err := src.Records(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "Laptop", records[0].Field("product"))
	assert.Equal(t, "50000", records[0].Field("amount"))
	// leading space after the delimiter is trimmed
	assert.Equal(t, "Coffee", records[1].Field("product"))
}

func TestCSVSource_AbsentColumnReadsEmpty(t *testing.T) {
	path := writeCSV(t, "date,product,amount\n2024-01-15,Laptop,50000\n")

	src, err := CSVFactory(context.Background(), Config{Path: path})
	require.NoError(t, err)

	records, err := src.Records(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "", records[0].Field("category"))
}

func TestCSVSource_EmptyFile(t *testing.T) {
	src, err := CSVFactory(context.Background(), Config{Path: writeCSV(t, "")})
	require.NoError(t, err)

	_, err = src.Records(context.Background())
	assert.ErrorIs(t, err, ErrNoRecords)
}

func TestCSVSource_HeaderOnly(t *testing.T) {
	src, err := CSVFactory(context.Background(), Config{Path: writeCSV(t, "date,product,amount\n")})
	require.NoError(t, err)

	_, err = src.Records(context.Background())
	assert.ErrorIs(t, err, ErrNoRecords)
}

func TestCSVSource_MissingFile(t *testing.T) {
	src, err := CSVFactory(context.Background(), Config{Path: filepath.Join(t.TempDir(), "missing.csv")})
	require.NoError(t, err)

	_, err = src.Records(context.Background())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoRecords)
}

func TestCSVFactory_RequiresPath(t *testing.T) {
	_, err := CSVFactory(context.Background(), Config{})
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry(map[string]Factory{"csv": CSVFactory})

	_, err := reg.Create(context.Background(), "parquet", Config{})
	assert.ErrorContains(t, err, `unsupported source kind "parquet"`)

	assert.ElementsMatch(t, []string{"csv"}, reg.Kinds())
}
