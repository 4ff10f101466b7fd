package model

import (
	"fmt"
	"strings"
)

// IndicatorError reports a Yes/No style flag that is outside the accepted vocabulary.
type IndicatorError struct {
	Table  string
	Row    string
	Column string
	Value  string
}

func (e *IndicatorError) Error() string {
	return fmt.Sprintf("unrecognized indicator value %q in table %s, row %s, column %s", e.Value, e.Table, e.Row, e.Column)
}

var indicatorTokens = map[string]bool{
	"":    false,
	"0":   false,
	"0.0": false,
	"No":  false,
	"NO":  false,
	"no":  false,
	"N":   false,
	"n":   false,
	"Yes": true,
	"YES": true,
	"yes": true,
	"Y":   true,
	"y":   true,
}

// ParseIndicator decodes a textual flag. Empty cells are false, like any other
// numeric gap in the input tables.
func ParseIndicator(raw string) (bool, bool) {
	v, ok := indicatorTokens[strings.TrimSpace(raw)]
	return v, ok
}

// DecodeIndicator is ParseIndicator with the location attached to the error.
func DecodeIndicator(table, row, column, raw string) (bool, error) {
	v, ok := ParseIndicator(raw)
	if !ok {
		return false, &IndicatorError{Table: table, Row: row, Column: column, Value: raw}
	}
	return v, nil
}
