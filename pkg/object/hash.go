package object

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
)

// HashHexLen is the length of a hex-encoded SHA-1 digest.
const HashHexLen = 40

// HashBytes computes the SHA-1 hash of data and returns it as a
// lowercase hex-encoded Hash.
func HashBytes(data []byte) Hash {
	sum := sha1.Sum(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// HashObject computes the SHA-1 of the frame "type len\0payload",
// which is the address of an object with the given payload.
func HashObject(objType ObjectType, payload []byte) Hash {
	h := sha1.New()
	fmt.Fprintf(h, "%s %d\x00", objType, len(payload))
	h.Write(payload)
	return Hash(hex.EncodeToString(h.Sum(nil)))
}

// AddressOf serializes o canonically and returns its content address.
func AddressOf(o Object) (Hash, error) {
	payload, err := MarshalPayload(o)
	if err != nil {
		return "", err
	}
	return HashObject(o.Type(), payload), nil
}

// NormalizeHash lowercases h. Addresses compare case-insensitively;
// every entry point normalizes so the rest of the code compares
// byte-wise.
func NormalizeHash(h Hash) Hash {
	return Hash(strings.ToLower(string(h)))
}

// ValidHash reports whether h is exactly 40 lowercase-normalizable hex
// characters.
func ValidHash(h Hash) bool {
	if len(h) != HashHexLen {
		return false
	}
	for _, c := range string(h) {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
