package content

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Fingerprint is a deterministic digest identifying a piece of content for
// deduplication. Two items with identical field values always produce the
// same fingerprint regardless of how their metric maps were built.
type Fingerprint string

func (f Fingerprint) String() string { return string(f) }

// ComputeFingerprint hashes the canonical JSON serialization of the item's
// non-binary fields. json.Marshal emits map keys in lexicographic order, so
// key insertion order never affects the digest. Image bytes are excluded.
func (c ContentItem) ComputeFingerprint() Fingerprint {
	metrics := c.Metrics
	if metrics == nil {
		metrics = map[string]float64{}
	}

	payload := map[string]interface{}{
		"source_platform": string(c.Platform),
		"source_locator":  c.Locator,
		"text":            c.Text,
		"caption":         c.Caption,
		"hashtags":        c.Hashtags,
		"image_ref":       c.ImageRef,
		"metrics":         metrics,
		"created_at":      c.CreatedAt.UTC().Format(time.RFC3339Nano),
	}

	// Marshal cannot fail for this shape.
	raw, _ := json.Marshal(payload)
	sum := sha256.Sum256(raw)
	return Fingerprint(hex.EncodeToString(sum[:]))
}
