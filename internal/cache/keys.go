package cache

import (
	"strings"
)

// PrefixBlob namespaces blob content. Blobs are content addressed by their
// git object id, so entries never go stale.
const PrefixBlob = "blob"

// BlobKey returns the cache key of the blob with the given git object id
func BlobKey(sha string) string {
	return PrefixBlob + ":" + strings.ToLower(strings.TrimSpace(sha))
}

// IsBlobKey reports whether key was produced by BlobKey
func IsBlobKey(key string) bool {
	return strings.HasPrefix(key, PrefixBlob+":") && len(key) > len(PrefixBlob)+1
}
