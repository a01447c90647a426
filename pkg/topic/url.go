package topic

import (
	"net/url"
	"regexp"
	"strings"
)

// domainMarkers is the fixed allow-list that gates URL classification. A
// string with none of these is never URL-like, which keeps ordinary
// sentences containing periods from being classified as links. TLDs outside
// the list are false negatives; that is a documented limitation.
var domainMarkers = []string{
	".com", ".org", ".net", ".io", ".edu", ".gov", ".me", ".co", ".app",
	"www.", "https://", "http://",
}

var urlPatterns = []*regexp.Regexp{
	regexp.MustCompile(`https?://\S+`),
	regexp.MustCompile(`www\.\S+`),
	regexp.MustCompile(`\S+\.(com|org|net|io|edu|gov|me|co|app)`),
}

// LooksLikeURL reports whether s contains a URL-like substring. It is a
// heuristic, not an RFC-compliant parser: the string must carry a domain
// marker, a candidate substring must be extractable, and that candidate must
// parse as a URL after prepending https:// when no scheme is present.
func LooksLikeURL(s string) bool {
	marked := false
	for _, m := range domainMarkers {
		if strings.Contains(s, m) {
			marked = true
			break
		}
	}
	if !marked {
		return false
	}

	var candidate string
	for _, re := range urlPatterns {
		if m := re.FindString(s); m != "" {
			candidate = m
			break
		}
	}
	if candidate == "" {
		return false
	}

	if !strings.HasPrefix(candidate, "http") {
		candidate = "https://" + candidate
	}
	u, err := url.Parse(candidate)
	return err == nil && u.Host != ""
}
