package correspondence

import (
	"fmt"
	"strings"
)

// Folio numbers read <AREA>-<SUBAREA>-<sequence>, e.g. DPE-OCI-0001. The
// sequence pads to four digits and widens naturally beyond 9999; once the
// hard cap is reached the scope is exhausted and issuance fails rather than
// wrapping or truncating.
const (
	folioPadWidth = 4

	// MaxFolioSequence is the last sequence number a scope may issue.
	MaxFolioSequence uint64 = 999_999_999
)

// ValidateScope checks the <AREA>-<SUBAREA> scope key: two to three
// dash-separated segments of 2-8 uppercase letters or digits.
func ValidateScope(scope string) error {
	segments := strings.Split(scope, "-")
	if len(segments) < 2 || len(segments) > 3 {
		return fmt.Errorf("%w: %q", ErrUnknownScope, scope)
	}
	for _, segment := range segments {
		if len(segment) < 2 || len(segment) > 8 {
			return fmt.Errorf("%w: %q", ErrUnknownScope, scope)
		}
		for _, r := range segment {
			if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
				return fmt.Errorf("%w: %q", ErrUnknownScope, scope)
			}
		}
	}
	return nil
}

// FormatFolio renders the system folio for a scope and sequence number.
func FormatFolio(scope string, seq uint64) (string, error) {
	if err := ValidateScope(scope); err != nil {
		return "", err
	}
	if seq == 0 {
		return "", fmt.Errorf("folio sequence must start at 1")
	}
	if seq > MaxFolioSequence {
		return "", fmt.Errorf("%w: %s", ErrSequenceExhausted, scope)
	}
	return fmt.Sprintf("%s-%0*d", scope, folioPadWidth, seq), nil
}
