package correspondence

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// MaxSummaryLength bounds the free-text summary, in runes.
const MaxSummaryLength = 2000

func ValidateSummary(summary string) error {
	if summary == "" {
		return ErrSummaryRequired
	}
	if utf8.RuneCountInString(summary) > MaxSummaryLength {
		return fmt.Errorf("%w: limit %d", ErrSummaryTooLong, MaxSummaryLength)
	}
	return nil
}

// ValidateReceivedDate checks the YYYY-MM-DD date associated with the
// correspondence. It is supplied by the originating office and is not
// necessarily the creation time.
func ValidateReceivedDate(date string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidReceivedDate, date)
	}
	return nil
}
