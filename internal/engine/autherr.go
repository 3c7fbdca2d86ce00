package engine

import "strings"

// Substrings that indicate the source rejected the request for lack of
// authentication (sign-in walls, bot detection, expired cookies).
var authHintPatterns = []string{
	"sign in to confirm",
	"cookies",
	"authentication",
}

// AuthHint is the message shown instead of the raw engine error when
// the failure looks like an authentication problem.
const AuthHint = "The source requires authentication. Upload fresh cookies via /upload-cookies and try again."

// RewriteAuthHint returns AuthHint when msg matches a known
// sign-in/bot-detection pattern, and msg unchanged otherwise.
func RewriteAuthHint(msg string) string {
	lower := strings.ToLower(msg)
	for _, pattern := range authHintPatterns {
		if strings.Contains(lower, pattern) {
			return AuthHint
		}
	}
	return msg
}
