package vectorstore

import (
	"strings"

	"github.com/Mikedodunnit/Chatpdf/internal/domain"
)

// Key patterns:
//
//	chatpdf:{collection}:{id}   one hash per vector
//	chatpdf:{collection}:idx    FT index over the vector hashes
//	chatpdf-meta:{collection}   collection metadata (outside every index prefix)
const metaPrefix = "chatpdf-meta:"

func metaKey(name string) string {
	return metaPrefix + name
}

func indexName(name string) string {
	return domain.KeyPrefix + name + ":idx"
}

func collectionPrefix(name string) string {
	return domain.KeyPrefix + name + ":"
}

func vectorKey(name, id string) string {
	return collectionPrefix(name) + id
}

func idFromKey(name, key string) string {
	return strings.TrimPrefix(key, collectionPrefix(name))
}
