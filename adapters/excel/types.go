package excel

// RawRowData is one data row keyed by trimmed header
type RawRowData map[string]string

// SheetData is the raw content of a corpus file
type SheetData struct {
	Headers []string
	Rows    []RawRowData
}
