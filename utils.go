package signet

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

var validBucketNameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*[a-z0-9]$`)

// IsValidBucketName reports whether name is addressable by both GCS and S3
// naming rules. It checks that the name:
//   - is 3 to 222 characters long
//   - uses only lowercase letters, digits, '.', '-', and '_'
//   - starts and ends with a letter or digit
//   - does not contain ".." (empty dot-separated components)
func IsValidBucketName(name string) bool {
	if len(name) < 3 || len(name) > 222 {
		return false
	}

	if strings.Contains(name, "..") {
		return false
	}

	return validBucketNameRegex.MatchString(name)
}

// IsValidObjectName reports whether name is a usable object key. It checks
// that the name:
//   - is 1 to 1024 bytes of valid UTF-8
//   - is not "." or ".."
//   - contains no NUL, carriage return, or line feed
func IsValidObjectName(name string) bool {
	if name == "" || len(name) > 1024 {
		return false
	}

	if name == "." || name == ".." {
		return false
	}

	if !utf8.ValidString(name) {
		return false
	}

	return !strings.ContainsAny(name, "\x00\r\n")
}

// RedactURL strips the query string and fragment from a signed URL so it can
// be logged without the signature.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<unparseable url>"
	}
	if u.RawQuery != "" {
		u.RawQuery = "REDACTED"
	}
	u.Fragment = ""
	u.User = nil
	return u.String()
}

// signedDateLayout is the ISO 8601 basic format used by X-Goog-Date and
// X-Amz-Date.
const signedDateLayout = "20060102T150405Z"

// SignedWindow reads the validity window a V4 signed URL carries in its
// X-Goog-Date/X-Goog-Expires or X-Amz-Date/X-Amz-Expires parameters. ok is
// false when the URL has neither pair.
func SignedWindow(raw string) (signedAt, expiresAt time.Time, ok bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	q := u.Query()

	for _, prefix := range []string{"X-Goog-", "X-Amz-"} {
		date, expires := q.Get(prefix+"Date"), q.Get(prefix+"Expires")
		if date == "" || expires == "" {
			continue
		}

		at, err := time.Parse(signedDateLayout, date)
		if err != nil {
			return time.Time{}, time.Time{}, false
		}
		secs, err := strconv.ParseInt(expires, 10, 64)
		if err != nil || secs < 0 {
			return time.Time{}, time.Time{}, false
		}
		return at, at.Add(time.Duration(secs) * time.Second), true
	}

	return time.Time{}, time.Time{}, false
}
