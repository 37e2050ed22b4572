package service

import (
	"crypto/md5" //nolint:gosec // index compaction digest, not a security boundary
	"encoding/hex"
	"strings"
)

// legacySignedTokenPrefix is the base64 rendering of the DER SEQUENCE header
// that opens every identifier in the legacy signed-token encoding.
const legacySignedTokenPrefix = "MII"

// keyDeriver implements KeyDeriver with a single strategy decision: hash
// legacy identifiers, pass everything else through.
type keyDeriver struct {
	isLegacy LegacyDetector
}

// NewKeyDeriver creates a KeyDeriver using the given legacy-format detector.
// A nil detector falls back to IsLegacySignedToken.
func NewKeyDeriver(detector LegacyDetector) KeyDeriver {
	if detector == nil {
		detector = IsLegacySignedToken
	}
	return &keyDeriver{isLegacy: detector}
}

// IsLegacySignedToken is the default LegacyDetector. It recognizes the
// legacy signed-token encoding by its structural prefix.
func IsLegacySignedToken(tokenID string) bool {
	return strings.HasPrefix(tokenID, legacySignedTokenPrefix)
}

// Derive returns the token identifier unchanged unless it matches the legacy
// encoding, in which case it returns the hex MD5 digest of the identifier
// bytes. The digest keeps the storage key compact with negligible collision
// odds for index purposes; the raw identifier, not the digest, remains the
// secret presented by callers.
func (d *keyDeriver) Derive(tokenID string) string {
	if !d.isLegacy(tokenID) {
		return tokenID
	}
	sum := md5.Sum([]byte(tokenID)) //nolint:gosec // index compaction digest, not a security boundary
	return hex.EncodeToString(sum[:])
}
