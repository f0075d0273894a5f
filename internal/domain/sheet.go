package domain

// ExportCell is one cell of an export request. Working is a tri-state:
// nil leaves the cell uncolored.
type ExportCell struct {
	Text    string `json:"text"`
	Working *bool  `json:"working,omitempty"`
}

type ExportRequest struct {
	Headers []string       `json:"headers"`
	Rows    [][]ExportCell `json:"rows"`
}

// Table is a spreadsheet preview: header names plus row values.
type Table struct {
	Columns []string   `json:"columns"`
	Data    [][]string `json:"data"`
}
