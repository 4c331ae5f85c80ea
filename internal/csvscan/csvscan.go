// Package csvscan parses the raw CSV text served by the spreadsheet export
// endpoints. Free-text cells (damage descriptions, needs lists) routinely
// embed commas, quotes, and newlines, so a naive line/comma split corrupts
// them; this scanner handles quoting in a single left-to-right pass and is
// shared by every row-mapping call site.
package csvscan

import "strings"

// Parse turns raw CSV text into an ordered sequence of rows of trimmed
// string cells.
//
// Quoting follows the common spreadsheet dialect: a double quote toggles
// quote mode, a doubled quote inside quotes is a literal quote, and
// delimiters and line terminators inside quotes are taken literally.
// A row is only emitted if it accumulated content, which drops trailing
// blank lines. An unterminated quote is not an error; the remaining text
// is consumed as part of the open cell.
func Parse(text string) [][]string {
	var (
		rows     [][]string
		row      []string
		cell     strings.Builder
		inQuotes bool
		hasData  bool
	)

	endCell := func() {
		row = append(row, strings.TrimSpace(cell.String()))
		cell.Reset()
	}
	endRow := func() {
		if !hasData {
			row = nil
			cell.Reset()
			return
		}
		endCell()
		rows = append(rows, row)
		row = nil
		hasData = false
	}

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				// Escaped quote: consume both, keep one.
				cell.WriteRune('"')
				i++
				hasData = true
				continue
			}
			inQuotes = !inQuotes
			hasData = true
		case c == ',' && !inQuotes:
			endCell()
			hasData = true
		case (c == '\n' || c == '\r') && !inQuotes:
			if c == '\r' && i+1 < len(runes) && runes[i+1] == '\n' {
				i++
			}
			endRow()
		default:
			cell.WriteRune(c)
			if !isSpace(c) {
				hasData = true
			}
		}
	}

	// Trailing row without a final terminator.
	endRow()

	return rows
}

func isSpace(c rune) bool {
	return c == ' ' || c == '\t'
}
