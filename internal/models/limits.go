package models

import (
	"math"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Column limits of schema.sql.
const (
	MaxNameLength     = 255   // VARCHAR(255), in characters
	MaxPhoneLength    = 64    // VARCHAR(64)
	MaxPriorityLength = 32    // VARCHAR(32)
	MaxURLLength      = 1024  // VARCHAR(1024)
	MaxIDLength       = 36    // CHAR(36)
	MaxTextBytes      = 65535 // TEXT
	MaxQuantity       = math.MaxInt32

	// AmountScale is the number of decimals of a DECIMAL(12,2) column.
	AmountScale = 2
)

// maxAmount is the first value a DECIMAL(12,2) column cannot hold.
var maxAmount = decimal.New(1, 12-AmountScale)

// WithinLength reports whether s fits a VARCHAR(max) column.
func WithinLength(s string, max int) bool {
	return utf8.RuneCountInString(s) <= max
}

// WithinText reports whether s fits a TEXT column.
func WithinText(s string) bool {
	return len(s) <= MaxTextBytes
}

// NormalizeAmount rounds d to cents. ok is false when the rounded value is
// negative or does not fit DECIMAL(12,2).
func NormalizeAmount(d decimal.Decimal) (rounded decimal.Decimal, ok bool) {
	rounded = d.Round(AmountScale)
	if rounded.IsNegative() || rounded.GreaterThanOrEqual(maxAmount) {
		return rounded, false
	}
	return rounded, true
}
