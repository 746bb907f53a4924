package csv

import (
	"io"
	"strings"
)

// UTF8BOM marks UTF-8 text for spreadsheet programs that would otherwise
// assume a legacy code page.
const UTF8BOM = "\uFEFF"

// StripBOM removes a leading BOM from s.
func StripBOM(s string) string {
	return strings.TrimPrefix(s, UTF8BOM)
}

// WriteBOM writes the UTF-8 BOM to w.
func WriteBOM(w io.Writer) error {
	_, err := io.WriteString(w, UTF8BOM)
	return err
}
