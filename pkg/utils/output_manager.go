package utils

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// OutputPaths are the destination keys derived from one input object.
type OutputPaths struct {
	Processed string `json:"processed"`
	Errors    string `json:"errors"`
	Archive   string `json:"archive"`
}

// GenerateOutputPaths partitions outputs by the UTC date of now and suffixes a
// timestamp so that reruns of the same input never overwrite each other.
func GenerateOutputPaths(inputKey string, now time.Time, ext string) OutputPaths {
	fileName := path.Base(inputKey)
	name := strings.TrimSuffix(fileName, path.Ext(fileName))

	now = now.UTC()
	datePath := now.Format("2006/01/02")
	timestamp := now.Format("20060102_150405")

	return OutputPaths{
		Processed: fmt.Sprintf("processed/%s/%s_%s.%s", datePath, name, timestamp, ext),
		Errors:    fmt.Sprintf("errors/%s/%s_%s_errors.%s", datePath, name, timestamp, ext),
		Archive:   fmt.Sprintf("archive/%s/%s_%s.%s", datePath, name, timestamp, ext),
	}
}

// GetFileType determines the input format based on extension. Unknown
// extensions are read as CSV.
func GetFileType(fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	switch ext {
	case ".json":
		return "json"
	case ".parquet":
		return "parquet"
	default:
		return "csv"
	}
}
