package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insurance-data-pipeline/internal/model"
)

func TestDecodeRecords_CSV(t *testing.T) {
	data := []byte("\"age\", sex ,bmi,children,smoker,region,charges\n" +
		"19,female,27.9,0,yes,southwest,16884.924\n" +
		"18,male,,1,no,southeast,1725.5523\n")

	rows, err := DecodeRecords("incoming/insurance.csv", data)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 19, rows[0]["age"])
	assert.Equal(t, "female", rows[0]["sex"])
	assert.Equal(t, 27.9, rows[0]["bmi"])
	assert.Equal(t, "", rows[1]["bmi"])
}

func TestDecodeRecords_UnknownExtensionIsCSV(t *testing.T) {
	rows, err := DecodeRecords("dump.txt", []byte("age,sex\n40,male\n"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 40, rows[0]["age"])
}

func TestDecodeRecords_EmptyCSV(t *testing.T) {
	rows, err := DecodeRecords("empty.csv", nil)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestDecodeRecords_JSON(t *testing.T) {
	tests := []struct {
		name string
		data string
		want int
	}{
		{"array", `[{"age": 30, "sex": "male"}, {"age": 40, "sex": "female"}]`, 2},
		{"object", `{"age": 30, "sex": "male"}`, 1},
		{"lines", "{\"age\": 30}\n\n{\"age\": 41}\n", 2},
		{"empty", "  ", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := DecodeRecords("batch.JSON", []byte(tt.data))
			require.NoError(t, err)
			assert.Len(t, rows, tt.want)
		})
	}
}

func TestDecodeRecords_JSONErrors(t *testing.T) {
	_, err := DecodeRecords("batch.json", []byte(`[1, 2]`))
	require.Error(t, err)

	_, err = DecodeRecords("batch.json", []byte("{\"age\": 1}\nnot json\n"))
	require.Error(t, err)

	_, err = DecodeRecords("batch.json", []byte(`"text"`))
	require.Error(t, err)
}

func TestDecodeRecords_ParquetRoundTrip(t *testing.T) {
	p := newTestProcessor()
	result := p.ProcessBatch([]model.RawRecord{validRecord()})
	require.Equal(t, 1, result.ValidCount)

	data, err := EncodeValid(FormatParquet, result.Valid)
	require.NoError(t, err)

	rows, err := DecodeRecords("out.parquet", data)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, int64(35), rows[0]["age"])
	assert.Equal(t, "male", rows[0]["sex"])
	assert.Equal(t, 31.5, rows[0]["bmi"])
	assert.Equal(t, 5000.12, rows[0]["charges"])
	assert.Equal(t, "obese", rows[0]["bmi_category"])
	assert.Nil(t, rows[0]["_extra"])

	// processed output is itself valid input
	again := p.ProcessRecord(rows[0])
	require.True(t, again.Valid(), again.Reason)
	assert.Equal(t, 35, again.Record.Age)
}
