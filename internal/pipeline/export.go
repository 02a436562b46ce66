package pipeline

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/parquet-go/parquet-go"

	"insurance-data-pipeline/internal/model"
	"insurance-data-pipeline/pkg/utils"
)

// Output formats
const (
	FormatParquet = "parquet"
	FormatJSON    = "json"
	FormatCSV     = "csv"
)

var contentTypes = map[string]string{
	FormatParquet: "application/parquet",
	FormatJSON:    "application/json",
	FormatCSV:     "text/csv",
}

// ContentType returns the MIME type for an output format.
func ContentType(format string) (string, error) {
	ct, ok := contentTypes[strings.ToLower(format)]
	if !ok {
		return "", fmt.Errorf("unsupported file format: %s", format)
	}
	return ct, nil
}

// processedRow is the columnar layout of a valid record.
type processedRow struct {
	Age          int64   `parquet:"age"`
	Sex          string  `parquet:"sex"`
	BMI          float64 `parquet:"bmi"`
	Children     int64   `parquet:"children"`
	Smoker       string  `parquet:"smoker"`
	Region       string  `parquet:"region"`
	Charges      float64 `parquet:"charges"`
	BMICategory  string  `parquet:"bmi_category"`
	ProcessedAt  string  `parquet:"processed_at"`
	ProcessingID string  `parquet:"processing_id"`
	Extra        string  `parquet:"_extra,optional"`
}

// rawRow keeps the source cells as text, since rejected and archived rows
// have no guaranteed types.
type rawRow struct {
	Age      string `parquet:"age,optional"`
	Sex      string `parquet:"sex,optional"`
	BMI      string `parquet:"bmi,optional"`
	Children string `parquet:"children,optional"`
	Smoker   string `parquet:"smoker,optional"`
	Region   string `parquet:"region,optional"`
	Charges  string `parquet:"charges,optional"`
	Extra    string `parquet:"_extra,optional"`
}

type errorRow struct {
	Age      string `parquet:"age,optional"`
	Sex      string `parquet:"sex,optional"`
	BMI      string `parquet:"bmi,optional"`
	Children string `parquet:"children,optional"`
	Smoker   string `parquet:"smoker,optional"`
	Region   string `parquet:"region,optional"`
	Charges  string `parquet:"charges,optional"`
	Extra    string `parquet:"_extra,optional"`
	Error    string `parquet:"_error"`
	Row      int64  `parquet:"_row"`
}

// EncodeValid serializes transformed records.
func EncodeValid(format string, records []model.InsuranceRecord) ([]byte, error) {
	if strings.EqualFold(format, FormatParquet) {
		rows := make([]processedRow, len(records))
		for i, r := range records {
			extra, err := extraJSON(r.Extra)
			if err != nil {
				return nil, err
			}
			rows[i] = processedRow{
				Age:          int64(r.Age),
				Sex:          r.Sex,
				BMI:          r.BMI,
				Children:     int64(r.Children),
				Smoker:       r.Smoker,
				Region:       r.Region,
				Charges:      r.Charges,
				BMICategory:  r.BMICategory,
				ProcessedAt:  r.ProcessedAt,
				ProcessingID: r.ProcessingID,
				Extra:        extra,
			}
		}
		return writeParquet(rows)
	}

	fields := make([]map[string]any, len(records))
	for i, r := range records {
		fields[i] = r.Fields()
	}
	return encodeMaps(format, fields)
}

// EncodeErrors serializes rejected rows with their _error and _row columns.
func EncodeErrors(format string, records []model.ErrorRecord) ([]byte, error) {
	if strings.EqualFold(format, FormatParquet) {
		rows := make([]errorRow, len(records))
		for i, r := range records {
			raw, err := toRawRow(r.Original)
			if err != nil {
				return nil, err
			}
			rows[i] = errorRow{
				Age: raw.Age, Sex: raw.Sex, BMI: raw.BMI, Children: raw.Children,
				Smoker: raw.Smoker, Region: raw.Region, Charges: raw.Charges, Extra: raw.Extra,
				Error: r.Reason,
				Row:   int64(r.Row),
			}
		}
		return writeParquet(rows)
	}

	fields := make([]map[string]any, len(records))
	for i, r := range records {
		fields[i] = r.Fields()
	}
	return encodeMaps(format, fields)
}

// EncodeRaw serializes source rows unchanged, for archiving.
func EncodeRaw(format string, records []model.RawRecord) ([]byte, error) {
	if strings.EqualFold(format, FormatParquet) {
		rows := make([]rawRow, len(records))
		for i, r := range records {
			raw, err := toRawRow(r)
			if err != nil {
				return nil, err
			}
			rows[i] = raw
		}
		return writeParquet(rows)
	}

	fields := make([]map[string]any, len(records))
	for i, r := range records {
		fields[i] = r
	}
	return encodeMaps(format, fields)
}

func toRawRow(rec model.RawRecord) (rawRow, error) {
	extra := make(map[string]any)
	for k, v := range rec {
		if !slices.Contains(model.RequiredFields, k) {
			extra[k] = v
		}
	}
	extraText, err := extraJSON(extra)
	if err != nil {
		return rawRow{}, err
	}
	return rawRow{
		Age:      utils.Stringify(rec[model.FieldAge]),
		Sex:      utils.Stringify(rec[model.FieldSex]),
		BMI:      utils.Stringify(rec[model.FieldBMI]),
		Children: utils.Stringify(rec[model.FieldChildren]),
		Smoker:   utils.Stringify(rec[model.FieldSmoker]),
		Region:   utils.Stringify(rec[model.FieldRegion]),
		Charges:  utils.Stringify(rec[model.FieldCharges]),
		Extra:    extraText,
	}, nil
}

func extraJSON(extra map[string]any) (string, error) {
	if len(extra) == 0 {
		return "", nil
	}
	b, err := json.Marshal(finiteValues(extra))
	if err != nil {
		return "", fmt.Errorf("failed to encode extra fields: %w", err)
	}
	return string(b), nil
}

// finiteValues returns row with NaN and infinite floats replaced by nil,
// which JSON cannot represent. row is returned as is when it has none.
func finiteValues(row map[string]any) map[string]any {
	var out map[string]any
	for k, v := range row {
		if !nonFinite(v) {
			continue
		}
		if out == nil {
			out = maps.Clone(row)
		}
		out[k] = nil
	}
	if out == nil {
		return row
	}
	return out
}

func nonFinite(v any) bool {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case float32:
		f = float64(val)
	default:
		return false
	}
	return math.IsNaN(f) || math.IsInf(f, 0)
}

func writeParquet[T any](rows []T) ([]byte, error) {
	var buf bytes.Buffer
	writer := parquet.NewGenericWriter[T](&buf)
	if _, err := writer.Write(rows); err != nil {
		return nil, fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return buf.Bytes(), nil
}

func encodeMaps(format string, rows []map[string]any) ([]byte, error) {
	switch strings.ToLower(format) {
	case FormatJSON:
		return encodeJSONLines(rows)
	case FormatCSV:
		return encodeCSV(rows)
	default:
		return nil, fmt.Errorf("unsupported file format: %s", format)
	}
}

// encodeJSONLines writes one object per line.
func encodeJSONLines(rows []map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	for i, row := range rows {
		if err := encoder.Encode(finiteValues(row)); err != nil {
			return nil, fmt.Errorf("failed to encode JSON row %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}

// encodeCSV writes the union of all keys as a sorted header.
func encodeCSV(rows []map[string]any) ([]byte, error) {
	allKeys := make(map[string]bool)
	for _, row := range rows {
		for key := range row {
			allKeys[key] = true
		}
	}
	header := make([]string, 0, len(allKeys))
	for key := range allKeys {
		header = append(header, key)
	}
	slices.Sort(header)

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if len(header) > 0 {
		if err := writer.Write(header); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}
	for i, row := range rows {
		line := make([]string, len(header))
		for j, key := range header {
			line[j] = utils.Stringify(row[key])
		}
		if err := writer.Write(line); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}
