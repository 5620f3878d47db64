package sweep

import "strings"

// DefaultRetryablePatterns is the allow-list of infrastructure failure
// wordings worth retrying. Matching is a case-insensitive substring test so
// wrapped errors keep matching.
var DefaultRetryablePatterns = []string{
	"server error occurred",
	"service spreadsheets failed",
	"timed out",
	"connection reset",
}

// IsTransient reports whether the error message matches the retryable
// allow-list. Anything else signals a data or policy problem and must not be
// retried.
func IsTransient(err error, patterns []string) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, p := range patterns {
		if strings.Contains(msg, strings.ToLower(p)) {
			return true
		}
	}
	return false
}
