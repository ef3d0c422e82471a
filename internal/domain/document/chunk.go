package document

import (
	"crypto/md5" //nolint:gosec // content address, not a security boundary
	"encoding/hex"
	"strings"
	"unicode/utf8"
)

// MaxChunkBytes bounds the stored text of a single chunk.
const MaxChunkBytes = 36000

var newlineStripper = strings.NewReplacer("\r\n", "", "\n", "", "\r", "")

// Chunk is the smallest retrievable unit of document text.
type Chunk struct {
	id         string
	pageNumber int
	text       string
}

// NewChunk normalizes page text and derives its content-addressed id.
func NewChunk(p Page) Chunk {
	text := TruncateBytes(Normalize(p.Text), MaxChunkBytes)
	return Chunk{
		id:         ContentID(text),
		pageNumber: p.Number,
		text:       text,
	}
}

// Reconstruct creates a Chunk without normalization (storage hydration).
func Reconstruct(id string, pageNumber int, text string) Chunk {
	return Chunk{id: id, pageNumber: pageNumber, text: text}
}

// ID returns the lowercase hex MD5 of the chunk text.
func (c Chunk) ID() string { return c.id }

// PageNumber returns the source page number.
func (c Chunk) PageNumber() int { return c.pageNumber }

// Text returns the normalized, truncated chunk text.
func (c Chunk) Text() string { return c.text }

// Normalize strips embedded line breaks from extracted page text.
func Normalize(text string) string {
	return newlineStripper.Replace(text)
}

// ContentID returns the 32-char lowercase hex MD5 digest of text.
func ContentID(text string) string {
	sum := md5.Sum([]byte(text)) //nolint:gosec // content address
	return hex.EncodeToString(sum[:])
}

// TruncateBytes cuts s to at most n bytes without splitting a multi-byte rune.
// Invalid UTF-8 at the cut point is dropped rather than kept partially.
func TruncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 0 {
		return ""
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	out := s[:cut]
	if !utf8.ValidString(out) {
		out = strings.ToValidUTF8(out, "")
	}
	return out
}

// Chunks builds one chunk per page in page order.
func Chunks(pages []Page) []Chunk {
	out := make([]Chunk, len(pages))
	for i, p := range pages {
		out[i] = NewChunk(p)
	}
	return out
}
