package common

import (
	"crypto/rand"
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

var amountJunkRegex = regexp.MustCompile(`[^0-9.\-]`)

// ParseAmount parses a report or API amount string into a decimal.Decimal,
// removing thousand separators and currency noise while keeping the sign.
func ParseAmount(text string) (decimal.Decimal, error) {
	clean := amountJunkRegex.ReplaceAllString(strings.TrimSpace(text), "")
	if clean == "" || clean == "-" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(clean)
}

// NewRunID returns a ULID used to tag one generation run.
func NewRunID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}
