package order

import (
	"regexp"
	"strings"
)

var cepPattern = regexp.MustCompile(`\b\d{5}-\d{3}\b`)

// quantityPatterns holds one "<digits><optional space><flavor>" pattern per
// catalog flavor, compiled once.
var quantityPatterns = func() map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp, len(Catalog))
	for _, item := range Catalog {
		patterns[item.Name] = regexp.MustCompile(`(?i)(\d+)\s*` + regexp.QuoteMeta(item.Name))
	}
	return patterns
}()

// Extract parses free text into order fragments: catalog flavors mentioned
// with a leading quantity, plus an optional CEP.
//
// A flavor is recorded only when the message contains it preceded by digits
// ("2 uva", "3guaraná"). A flavor named without a quantity is skipped —
// known limitation, the bot re-prompts instead of guessing.
func Extract(text string) (flavors, quantities []string, cep string) {
	lower := strings.ToLower(text)
	for _, item := range Catalog {
		if !strings.Contains(lower, item.Name) {
			continue
		}
		m := quantityPatterns[item.Name].FindStringSubmatch(text)
		if m == nil {
			continue
		}
		flavors = append(flavors, item.Name)
		quantities = append(quantities, m[1])
	}
	cep = cepPattern.FindString(text)
	return flavors, quantities, cep
}

// MentionsFlavor reports whether any catalog flavor name appears in the
// text, case-insensitively. Used to detect flavor intent in completion
// replies.
func MentionsFlavor(text string) bool {
	lower := strings.ToLower(text)
	for _, item := range Catalog {
		if strings.Contains(lower, item.Name) {
			return true
		}
	}
	return false
}
