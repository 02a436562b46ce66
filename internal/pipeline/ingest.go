package pipeline

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/parquet-go/parquet-go"

	"insurance-data-pipeline/internal/model"
	"insurance-data-pipeline/pkg/utils"
)

// ------------------- Ingestion -------------------

// DecodeRecords parses an object body into rows, choosing the format from
// the object name's extension.
func DecodeRecords(name string, data []byte) ([]model.RawRecord, error) {
	switch utils.GetFileType(name) {
	case "json":
		return decodeJSON(data)
	case "parquet":
		return decodeParquet(data)
	default:
		return decodeCSV(bytes.NewReader(data))
	}
}

// ------------------- CSV Ingestion -------------------
func decodeCSV(r io.Reader) ([]model.RawRecord, error) {
	csvReader := csv.NewReader(r)
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	headers, err := csvReader.Read()
	if err == io.EOF {
		return []model.RawRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	for i, h := range headers {
		// Clean header names: trim whitespace and remove ALL quotes
		h = strings.TrimPrefix(h, "\ufeff")
		headers[i] = strings.ReplaceAll(strings.TrimSpace(h), `"`, "")
	}

	records := make([]model.RawRecord, 0)
	for line := 2; ; line++ {
		row, err := csvReader.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, fmt.Errorf("CSV read error on line %d: %w", line, err)
		}

		rec := make(model.RawRecord, len(headers))
		for i, h := range headers {
			if i < len(row) {
				rec[h] = utils.ParseValue(row[i])
			} else {
				rec[h] = nil
			}
		}
		records = append(records, rec)
	}
}

// ------------------- JSON Ingestion -------------------
func decodeJSON(data []byte) ([]model.RawRecord, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []model.RawRecord{}, nil
	}

	var raw interface{}
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		// Not a single document, try JSON lines
		return decodeJSONLines(trimmed)
	}

	switch doc := raw.(type) {
	case []interface{}:
		records := make([]model.RawRecord, 0, len(doc))
		for i, item := range doc {
			m, ok := item.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("JSON element %d is %T, want object", i, item)
			}
			records = append(records, model.RawRecord(m))
		}
		return records, nil
	case map[string]interface{}:
		return []model.RawRecord{model.RawRecord(doc)}, nil
	default:
		return nil, errors.New("unexpected JSON structure")
	}
}

func decodeJSONLines(data []byte) ([]model.RawRecord, error) {
	records := make([]model.RawRecord, 0)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		var rec map[string]interface{}
		if err := json.Unmarshal(text, &rec); err != nil {
			return nil, fmt.Errorf("failed to decode JSON line %d: %w", line, err)
		}
		records = append(records, model.RawRecord(rec))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan JSON lines: %w", err)
	}
	return records, nil
}

// ------------------- Parquet Ingestion -------------------

// decodeParquet reads a flat parquet file into rows keyed by column name.
func decodeParquet(data []byte) ([]model.RawRecord, error) {
	file, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}

	columns := file.Schema().Columns()
	names := make([]string, len(columns))
	for i, path := range columns {
		names[i] = strings.Join(path, ".")
	}

	records := make([]model.RawRecord, 0, file.NumRows())
	buf := make([]parquet.Row, 128)
	for _, rowGroup := range file.RowGroups() {
		rows := rowGroup.Rows()
		for {
			n, err := rows.ReadRows(buf)
			for _, row := range buf[:n] {
				rec := make(model.RawRecord, len(names))
				for _, value := range row {
					col := value.Column()
					if col < 0 || col >= len(names) {
						continue
					}
					rec[names[col]] = parquetValue(value)
				}
				records = append(records, rec)
			}
			if err == io.EOF {
				break
			}
			if err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to read parquet rows: %w", err)
			}
		}
		rows.Close()
	}
	return records, nil
}

func parquetValue(v parquet.Value) interface{} {
	if v.IsNull() {
		return nil
	}
	switch v.Kind() {
	case parquet.Boolean:
		return v.Boolean()
	case parquet.Int32:
		return int64(v.Int32())
	case parquet.Int64:
		return v.Int64()
	case parquet.Float:
		return float64(v.Float())
	case parquet.Double:
		return v.Double()
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return string(v.ByteArray())
	default:
		return v.String()
	}
}
