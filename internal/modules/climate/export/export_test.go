package export

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/asymonsziebart/TempHumidityMonitor/internal/modules/climate/types"
)

func sampleReadings() []types.Reading {
	base := time.Date(2024, 3, 5, 10, 0, 0, 0, time.Local)
	return []types.Reading{
		{Timestamp: base.Add(2 * time.Second), TemperatureF: 77, HumidityPct: 50},
		{Timestamp: base, TemperatureF: 64.4, HumidityPct: 40.25},
	}
}

func TestFilename(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.Local)
	assert.Equal(t, "sensor_data_20240102_030405.csv", Filename(ts, "csv"))
	assert.Equal(t, "sensor_data_20240102_030405.xlsx", Filename(ts, "xlsx"))
}

func TestWriteCSV_roundTrip(t *testing.T) {
	var buf bytes.Buffer
	in := sampleReadings()
	require.NoError(t, WriteCSV(&buf, in))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Timestamp", "Temperature (°F)", "Humidity (%)"}, records[0])

	for i, r := range in {
		rec := records[i+1]
		ts, err := time.ParseInLocation(types.TimestampLayout, rec[0], time.Local)
		require.NoError(t, err)
		assert.True(t, ts.Equal(r.Timestamp), "row %d timestamp %s", i, rec[0])
		temp, err := strconv.ParseFloat(rec[1], 64)
		require.NoError(t, err)
		assert.Equal(t, r.TemperatureF, temp)
		humid, err := strconv.ParseFloat(rec[2], 64)
		require.NoError(t, err)
		assert.Equal(t, r.HumidityPct, humid)
	}
}

func TestWriteCSV_empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "Timestamp,Temperature (°F),Humidity (%)\n", buf.String())
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleReadings()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, "2024-03-05 10:00:02", rows[1][0])

	v, err := f.GetCellValue(sheetName, "B3", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	temp, err := strconv.ParseFloat(v, 64)
	require.NoError(t, err)
	assert.InDelta(t, 64.4, temp, 1e-9)
}

func TestWriteXLSX_empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
