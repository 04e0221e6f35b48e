package utils

import "strings"

// UTF8BOM makes spreadsheet applications decode the file as UTF-8, which
// Persian report headers depend on.
const UTF8BOM = "\uFEFF"

// ForceText wraps a value in the ="..." formula construct so spreadsheet
// applications keep it as literal text. Without it, plate and phone numbers
// collapse into scientific notation and lose leading zeros.
func ForceText(value string) string {
	return `="` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

// CSVCell quotes a single cell, escaping embedded quotes
func CSVCell(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

// BuildCSV assembles a BOM-prefixed, comma-delimited document from a header
// row and data rows. Cells are expected to be pre-wrapped (ForceText for
// number-like values); every cell is additionally CSV-quoted here.
func BuildCSV(headers []string, rows [][]string) []byte {
	var b strings.Builder
	b.WriteString(UTF8BOM)

	headerCells := make([]string, len(headers))
	for i, h := range headers {
		headerCells[i] = CSVCell(h)
	}
	b.WriteString(strings.Join(headerCells, ","))

	for _, row := range rows {
		b.WriteString("\n")
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = CSVCell(v)
		}
		b.WriteString(strings.Join(cells, ","))
	}
	return []byte(b.String())
}
