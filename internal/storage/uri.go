package storage

import (
	"fmt"
	"strings"
)

const uriScheme = "s3://"

// ParseURI splits an s3://bucket/key URI into bucket and key. The key may
// be empty (a bare bucket or prefix root).
func ParseURI(uri string) (bucket, key string, err error) {
	if !strings.HasPrefix(uri, uriScheme) {
		return "", "", fmt.Errorf("not an s3 URI: %s", uri)
	}
	bucket, key, _ = strings.Cut(strings.TrimPrefix(uri, uriScheme), "/")
	if bucket == "" {
		return "", "", fmt.Errorf("s3 URI missing bucket: %s", uri)
	}
	return bucket, key, nil
}

// JoinURI builds an s3:// URI from a bucket and key parts, skipping empty
// parts and collapsing separators.
func JoinURI(bucket string, parts ...string) string {
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(p, "/")
		if p != "" {
			segments = append(segments, p)
		}
	}
	if len(segments) == 0 {
		return uriScheme + bucket
	}
	return uriScheme + bucket + "/" + strings.Join(segments, "/")
}
