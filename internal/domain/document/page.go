package document

import "strings"

// Page is an ordered extraction unit. Number starts at 1.
type Page struct {
	Number int
	Text   string
}

// IsBlank reports whether the page carries no visible text.
func (p Page) IsBlank() bool {
	return strings.TrimSpace(p.Text) == ""
}

// AllBlank reports whether every page is empty or whitespace-only.
// A nil or empty slice counts as blank.
func AllBlank(pages []Page) bool {
	for _, p := range pages {
		if !p.IsBlank() {
			return false
		}
	}
	return true
}
