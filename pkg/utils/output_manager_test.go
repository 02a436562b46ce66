package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateOutputPaths(t *testing.T) {
	now := time.Date(2024, 3, 7, 9, 5, 1, 0, time.FixedZone("X", 3600))

	paths := GenerateOutputPaths("incoming/insurance_data.csv", now, "parquet")

	assert.Equal(t, "processed/2024/03/07/insurance_data_20240307_080501.parquet", paths.Processed)
	assert.Equal(t, "errors/2024/03/07/insurance_data_20240307_080501_errors.parquet", paths.Errors)
	assert.Equal(t, "archive/2024/03/07/insurance_data_20240307_080501.parquet", paths.Archive)
}

func TestGetFileType(t *testing.T) {
	assert.Equal(t, "csv", GetFileType("a/b.CSV"))
	assert.Equal(t, "json", GetFileType("b.Json"))
	assert.Equal(t, "parquet", GetFileType("b.parquet"))
	assert.Equal(t, "csv", GetFileType("b.txt"))
	assert.Equal(t, "csv", GetFileType("noext"))
}
