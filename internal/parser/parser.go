// Package parser defines the contract shared by the sheet parsers.
package parser

import (
	"io"

	"vistoria/pkg/records"
)

// Parser turns one sheet into raw records keyed by the header text as
// written in the file. The int result counts rows dropped as malformed.
type Parser interface {
	Parse(r io.Reader) ([]records.Record, int, error)
}
