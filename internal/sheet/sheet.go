// Package sheet reads URL lists and previews from uploaded workbooks and
// writes color-annotated result workbooks.
package sheet

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/multierr"

	"github.com/hamed0406/linkcheck/internal/domain"
)

// ExportFilename is the download name of an exported workbook.
const ExportFilename = "link_kontrol_sonuclari.xlsx"

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// URL columns, zero-based: the first and third columns of the sheet.
var urlColumns = []int{0, 2}

const (
	fillWorking    = "90EE90"
	fillNotWorking = "FFB6C1"
)

var ErrNoSheet = errors.New("workbook has no sheets")

// sheetRows is the cell text of a sheet plus its declared column count. A
// workbook's dimension can be wider than its rows because GetRows trims
// trailing empty cells.
type sheetRows struct {
	rows  [][]string
	width int
}

func firstSheetRows(r io.Reader) (out sheetRows, err error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return out, fmt.Errorf("open workbook: %w", err)
	}
	defer multierr.AppendInvoke(&err, multierr.Close(f))

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return out, ErrNoSheet
	}
	out.rows, err = f.GetRows(sheets[0])
	if err != nil {
		return out, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if dim, err := f.GetSheetDimension(sheets[0]); err == nil {
		out.width = dimensionWidth(dim)
	}
	return out, nil
}

// dimensionWidth returns the last column of a dimension ref such as "A1:C9",
// or 0 when ref cannot be parsed.
func dimensionWidth(ref string) int {
	last := ref
	if i := strings.LastIndexByte(ref, ':'); i >= 0 {
		last = ref[i+1:]
	}
	col, _, err := excelize.CellNameToCoordinates(last)
	if err != nil {
		return 0
	}
	return col
}

// ReadURLs returns the URLs of the first sheet: every value of the first
// column, then every value of the third, below the header row. Values are
// trimmed and blanks dropped.
func ReadURLs(r io.Reader) ([]string, error) {
	sh, err := firstSheetRows(r)
	if err != nil {
		return nil, err
	}
	rows := sh.rows
	var urls []string
	for _, col := range urlColumns {
		for i := 1; i < len(rows); i++ {
			if col >= len(rows[i]) {
				continue
			}
			if v := strings.TrimSpace(rows[i][col]); v != "" {
				urls = append(urls, v)
			}
		}
	}
	return urls, nil
}

// ReadTable returns the header names and rows of the first sheet. Short rows
// are padded with "" and empty rows between data rows are kept as all-""
// rows; trailing empty rows are dropped.
func ReadTable(r io.Reader) (domain.Table, error) {
	sh, err := firstSheetRows(r)
	if err != nil {
		return domain.Table{}, err
	}
	rows := sh.rows
	t := domain.Table{Columns: []string{}, Data: [][]string{}}
	if len(rows) == 0 {
		return t, nil
	}

	width := sh.width
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	for i := 0; i < width; i++ {
		name := ""
		if i < len(rows[0]) {
			name = rows[0][i]
		}
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		t.Columns = append(t.Columns, name)
	}

	data := rows[1:]
	for len(data) > 0 && isBlank(data[len(data)-1]) {
		data = data[:len(data)-1]
	}
	for _, row := range data {
		out := make([]string, width)
		copy(out, row)
		t.Data = append(t.Data, out)
	}
	return t, nil
}

func isBlank(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}

// Export writes a workbook with headers in the first row and one row per
// entry of rows. Cells are filled green when Working is true, red when it is
// false, and left plain when it is nil.
func Export(w io.Writer, headers []string, rows [][]domain.ExportCell) (err error) {
	f := excelize.NewFile()
	defer multierr.AppendInvoke(&err, multierr.Close(f))

	name := f.GetSheetName(0)
	green, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{fillWorking}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("green style: %w", err)
	}
	red, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{fillNotWorking}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("red style: %w", err)
	}

	for col, h := range headers {
		if err := setCell(f, name, col+1, 1, h); err != nil {
			return err
		}
	}

	for r, row := range rows {
		for c, cell := range row {
			ref, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellStr(name, ref, cell.Text); err != nil {
				return fmt.Errorf("set %s: %w", ref, err)
			}
			if cell.Working == nil {
				continue
			}
			style := red
			if *cell.Working {
				style = green
			}
			if err := f.SetCellStyle(name, ref, ref, style); err != nil {
				return fmt.Errorf("style %s: %w", ref, err)
			}
		}
	}

	// record the full extent so blank trailing columns survive a re-read
	width := len(headers)
	for _, row := range rows {
		width = max(width, len(row))
	}
	if width > 0 {
		last, err := excelize.CoordinatesToCellName(width, len(rows)+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetDimension(name, "A1:"+last); err != nil {
			return fmt.Errorf("dimension: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setCell(f *excelize.File, sheet string, col, row int, v string) error {
	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := f.SetCellStr(sheet, ref, v); err != nil {
		return fmt.Errorf("set %s: %w", ref, err)
	}
	return nil
}
