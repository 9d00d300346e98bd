package repo

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/ssh"

	"github.com/odvcencio/strata/pkg/object"
)

// Commit signatures are SSH signatures over the unsigned canonical
// commit payload, stored as a single-line extension header:
//
//	signature sshsig-v1:<sig-format>:<pubkey-b64>:<sig-b64>
const signaturePrefix = "sshsig-v1"

var (
	// ErrUnsigned is returned when verifying a commit that carries no
	// signature header.
	ErrUnsigned = errors.New("commit is not signed")

	// ErrBadSignature is returned when a signature header is malformed
	// or fails cryptographic verification.
	ErrBadSignature = errors.New("invalid commit signature")
)

// NewSSHSigner builds a CommitSigner from an SSH private key file.
func NewSSHSigner(keyPath string) (CommitSigner, error) {
	raw, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("read signing key %q: %w", keyPath, err)
	}
	signer, err := ssh.ParsePrivateKey(raw)
	if err != nil {
		return nil, fmt.Errorf("parse signing key %q: %w", keyPath, err)
	}
	return SignerFromSSH(signer), nil
}

// SignerFromSSH builds a CommitSigner from an already-parsed SSH
// signer.
func SignerFromSSH(signer ssh.Signer) CommitSigner {
	pubB64 := base64.StdEncoding.EncodeToString(signer.PublicKey().Marshal())
	return func(payload []byte) (string, error) {
		sig, err := signer.Sign(rand.Reader, payload)
		if err != nil {
			return "", err
		}
		sigB64 := base64.StdEncoding.EncodeToString(sig.Blob)
		return fmt.Sprintf("%s:%s:%s:%s", signaturePrefix, sig.Format, pubB64, sigB64), nil
	}
}

// VerifyCommit checks a commit's signature header against the unsigned
// canonical payload. It returns the signing public key on success so
// callers can match it against trusted keys.
func VerifyCommit(c *object.Commit) (ssh.PublicKey, error) {
	val, ok := c.Header(object.HeaderSignature)
	if !ok {
		return nil, ErrUnsigned
	}
	parts := strings.SplitN(val, ":", 4)
	if len(parts) != 4 || parts[0] != signaturePrefix {
		return nil, fmt.Errorf("unrecognized signature header: %w", ErrBadSignature)
	}
	pubBytes, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, fmt.Errorf("public key: %v: %w", err, ErrBadSignature)
	}
	pub, err := ssh.ParsePublicKey(pubBytes)
	if err != nil {
		return nil, fmt.Errorf("public key: %v: %w", err, ErrBadSignature)
	}
	sigBytes, err := base64.StdEncoding.DecodeString(parts[3])
	if err != nil {
		return nil, fmt.Errorf("signature blob: %v: %w", err, ErrBadSignature)
	}

	payload, err := unsignedPayload(c)
	if err != nil {
		return nil, err
	}
	if err := pub.Verify(payload, &ssh.Signature{Format: parts[1], Blob: sigBytes}); err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrBadSignature)
	}
	return pub, nil
}

// unsignedPayload re-derives the canonical bytes the signature was
// computed over: the commit without its signature header.
func unsignedPayload(c *object.Commit) ([]byte, error) {
	unsigned := *c
	unsigned.Headers = nil
	for _, h := range c.Headers {
		if h.Key == object.HeaderSignature {
			continue
		}
		unsigned.Headers = append(unsigned.Headers, h)
	}
	payload, err := object.MarshalCommit(&unsigned)
	if err != nil {
		return nil, fmt.Errorf("marshal unsigned commit: %w", err)
	}
	return payload, nil
}
