package ruleset

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// CanonicalBytes renders the raw document as compact JSON. encoding/json
// already sorts map[string]any keys and preserves list order, which is
// exactly the canonicalization spec.md's hash algorithm calls for — no
// separate key-sorting pass is needed beyond decoding into map[string]any
// in the first place.
func CanonicalBytes(raw map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(raw); err != nil {
		return nil, err
	}
	// Encoder.Encode appends a trailing newline; strip it so the hashed
	// bytes are exactly the canonical document, nothing more.
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Hash computes the lowercase hex SHA-256 digest of the RuleSet's
// canonical form. This is the rule_hash stamped on every TraceEntry: any
// byte-level change to the authored document changes the hash, and
// whitespace/comment-only changes to the source file (which never survive
// decoding) do not.
func Hash(raw map[string]any) (string, error) {
	canon, err := CanonicalBytes(raw)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canon)
	return hex.EncodeToString(sum[:]), nil
}
