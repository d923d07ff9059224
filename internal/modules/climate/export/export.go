// Package export renders stored readings as CSV or an Excel workbook.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/asymonsziebart/TempHumidityMonitor/internal/modules/climate/types"
)

const (
	CSVContentType  = "text/csv; charset=utf-8"
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	sheetName = "Readings"
)

var Header = []string{"Timestamp", "Temperature (°F)", "Humidity (%)"}

// Filename returns sensor_data_YYYYmmdd_HHMMSS.<ext> for t in local time.
func Filename(t time.Time, ext string) string {
	return "sensor_data_" + t.In(time.Local).Format("20060102_150405") + "." + ext
}

// WriteCSV writes the header and one row per reading in the given order.
func WriteCSV(w io.Writer, readings []types.Reading) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range readings {
		rec := []string{
			r.Timestamp.In(time.Local).Format(types.TimestampLayout),
			formatNumber(r.TemperatureF),
			formatNumber(r.HumidityPct),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// WriteXLSX writes a single-sheet workbook with the same columns as the CSV
// export, numeric cells and a frozen header row.
func WriteXLSX(w io.Writer, readings []types.Reading) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	numberStyle, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return fmt.Errorf("number style: %w", err)
	}

	for i, h := range Header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return fmt.Errorf("set header %s: %w", cell, err)
		}
	}
	if err := f.SetCellStyle(sheetName, "A1", "C1", headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, r := range readings {
		row := i + 2
		values := []any{
			r.Timestamp.In(time.Local).Format(types.TimestampLayout),
			r.TemperatureF,
			r.HumidityPct,
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("set row %d: %w", row, err)
		}
	}
	if len(readings) > 0 {
		last := len(readings) + 1
		if err := f.SetCellStyle(sheetName, "B2", fmt.Sprintf("C%d", last), numberStyle); err != nil {
			return fmt.Errorf("style values: %w", err)
		}
	}

	if err := f.SetColWidth(sheetName, "A", "A", 22); err != nil {
		return fmt.Errorf("column width: %w", err)
	}
	if err := f.SetColWidth(sheetName, "B", "C", 18); err != nil {
		return fmt.Errorf("column width: %w", err)
	}
	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
