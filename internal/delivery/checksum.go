package delivery

// checksum.go calculates the payload checksum stored on the audit record.
//
// The payload is canonicalized (RFC 8785 JCS) before hashing so that two
// semantically identical payloads with different key order or whitespace
// produce the same checksum.

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/gowebpki/jcs"
)

// PayloadChecksum returns the SHA-256 checksum (hex) of the canonicalized
// JSON payload.
func PayloadChecksum(payload json.RawMessage) (string, error) {
	canonical, err := jcs.Transform(payload)
	if err != nil {
		return "", WrapInternalError(err, "failed to canonicalize payload")
	}

	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
