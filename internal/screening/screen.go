package screening

import (
	"log"
	"strings"
	"unicode"
)

// spamKeywords is the fixed phrase list; any single hit flags the message.
var spamKeywords = []string{
	"viagra", "cialis", "casino", "lottery", "prize", "winner",
	"click here", "buy now", "limited time", "act now", "free money",
}

const (
	maxURLCount       = 3
	maxCharRepeat     = 10
	upperRatioLimit   = 0.7
	upperRatioMinimum = 20
)

// Screen holds the loaded deny-list and exposes the two admission checks.
// Safe for concurrent use: all state is read-only after construction.
type Screen struct {
	disposable map[string]struct{}
}

// New builds a Screen from the built-in disposable-domain list.
func New() *Screen {
	disposable := make(map[string]struct{}, len(defaultDisposableDomains))
	for _, d := range defaultDisposableDomains {
		disposable[d] = struct{}{}
	}
	return &Screen{disposable: disposable}
}

// NewFromFile builds a Screen from an external deny-list file, one domain
// per line. The list replaces the built-in one entirely.
func NewFromFile(path string) (*Screen, error) {
	domains, err := loadDomainList(path)
	if err != nil {
		return nil, err
	}
	log.Printf("[screening] Loaded %d disposable domains from %s", len(domains), path)
	return &Screen{disposable: domains}, nil
}

// IsDisposable reports whether the address belongs to a known disposable
// mailbox provider. The domain is everything after the last '@'.
func (s *Screen) IsDisposable(email string) bool {
	at := strings.LastIndex(email, "@")
	domain := strings.ToLower(email[at+1:])
	_, ok := s.disposable[domain]
	return ok
}

// IsSpam applies the content heuristics to message and subject. The checks
// are OR'd: any single trigger flags the submission, no scoring.
func (s *Screen) IsSpam(message, subject string) bool {
	text := strings.ToLower(message + " " + subject)

	for _, kw := range spamKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}

	if countURLs(text) > maxURLCount {
		return true
	}

	if hasLongRun(text, maxCharRepeat) {
		return true
	}

	// Shouting check only applies to messages long enough to judge.
	if len(message) > upperRatioMinimum {
		upper := 0
		for _, r := range message {
			if unicode.IsUpper(r) {
				upper++
			}
		}
		if float64(upper)/float64(len([]rune(message))) > upperRatioLimit {
			return true
		}
	}

	return false
}

func countURLs(text string) int {
	return strings.Count(text, "http://") + strings.Count(text, "https://")
}

// hasLongRun reports whether any rune repeats more than max times in a row.
func hasLongRun(text string, max int) bool {
	var prev rune
	run := 0
	for _, r := range text {
		if r == prev {
			run++
			if run > max {
				return true
			}
		} else {
			prev = r
			run = 1
		}
	}
	return false
}
