package collection

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// MinNameLength is the shortest name the vector store accepts.
	MinNameLength = 3
	// ShortNamePrefix pads names below MinNameLength.
	ShortNamePrefix = "col_"
)

var (
	disallowedChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)
	edgeSeparators  = regexp.MustCompile(`^[_\-.]+|[_\-.]+$`)
	nameRegex       = regexp.MustCompile(`^[a-zA-Z0-9._-]{3,}$`)
)

// NameFor derives the collection name for a document key.
// Non-ASCII characters are dropped, everything outside [A-Za-z0-9._-]
// becomes '_', separators are trimmed from both ends, and names shorter
// than MinNameLength get ShortNamePrefix.
func NameFor(documentKey string) string {
	var b strings.Builder
	b.Grow(len(documentKey))
	for _, r := range documentKey {
		if r < 0x80 {
			b.WriteRune(r)
		}
	}
	name := disallowedChars.ReplaceAllString(b.String(), "_")
	name = edgeSeparators.ReplaceAllString(name, "")
	if len(name) < MinNameLength {
		name = ShortNamePrefix + name
	}
	return name
}

// ValidName reports whether name satisfies the store's naming contract.
func ValidName(name string) bool {
	return nameRegex.MatchString(name)
}

// Collection is the per-document vector namespace (immutable value object).
type Collection struct {
	name      string
	vectorDim int
	createdAt int64
}

// New validates and creates a Collection.
func New(name string, vectorDim int, createdAt int64) (Collection, error) {
	if !ValidName(name) {
		return Collection{}, fmt.Errorf("invalid collection name %q", name)
	}
	if vectorDim <= 0 {
		return Collection{}, fmt.Errorf("vector dimension must be positive")
	}
	return Collection{name: name, vectorDim: vectorDim, createdAt: createdAt}, nil
}

// Reconstruct creates a Collection without validation (storage hydration).
func Reconstruct(name string, vectorDim int, createdAt int64) Collection {
	return Collection{name: name, vectorDim: vectorDim, createdAt: createdAt}
}

// Name returns the collection name.
func (c Collection) Name() string { return c.name }

// VectorDim returns the vector dimension fixed at creation.
func (c Collection) VectorDim() int { return c.vectorDim }

// CreatedAt returns the creation timestamp (unix millis).
func (c Collection) CreatedAt() int64 { return c.createdAt }
