// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-15
// Last Modified: 2026-10-19

// Package webhook receives GitHub issue webhooks and relays new issues
// to Jira.
package webhook

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"strings"
)

// Supported signature algorithms and the header each one travels in.
const (
	AlgorithmSHA1   = "sha1"
	AlgorithmSHA256 = "sha256"

	HeaderSHA1   = "X-Hub-Signature"
	HeaderSHA256 = "X-Hub-Signature-256"
)

var (
	ErrMissingSignature     = errors.New("missing signature header")
	ErrMalformedSignature   = errors.New("malformed signature header")
	ErrUnsupportedAlgorithm = errors.New("unsupported signature algorithm")
	ErrSignatureMismatch    = errors.New("signature mismatch")
)

// Verifier checks webhook payload signatures for a single algorithm.
type Verifier struct {
	secret    []byte
	algorithm string
	newHash   func() hash.Hash
}

// NewVerifier creates a Verifier. An empty algorithm means sha1.
func NewVerifier(secret, algorithm string) (*Verifier, error) {
	if secret == "" {
		return nil, fmt.Errorf("webhook secret is required")
	}
	v := &Verifier{secret: []byte(secret), algorithm: algorithm}
	switch algorithm {
	case "", AlgorithmSHA1:
		v.algorithm = AlgorithmSHA1
		v.newHash = sha1.New
	case AlgorithmSHA256:
		v.newHash = sha256.New
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, algorithm)
	}
	return v, nil
}

// Algorithm returns the configured algorithm name.
func (v *Verifier) Algorithm() string {
	return v.algorithm
}

// Header returns the request header carrying the signature.
func (v *Verifier) Header() string {
	if v.algorithm == AlgorithmSHA256 {
		return HeaderSHA256
	}
	return HeaderSHA1
}

// Sign returns the header value GitHub would send for body.
func (v *Verifier) Sign(body []byte) string {
	return v.algorithm + "=" + hex.EncodeToString(v.mac(body))
}

// Verify checks header, formatted "<algorithm>=<hex digest>", against body.
// The algorithm is checked before any hashing happens.
func (v *Verifier) Verify(body []byte, header string) error {
	if header == "" {
		return ErrMissingSignature
	}
	algorithm, digest, ok := strings.Cut(header, "=")
	if !ok {
		return ErrMalformedSignature
	}
	if algorithm != v.algorithm {
		return fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, algorithm)
	}

	got, err := hex.DecodeString(digest)
	if err != nil {
		return ErrSignatureMismatch
	}
	if !hmac.Equal(got, v.mac(body)) {
		return ErrSignatureMismatch
	}
	return nil
}

func (v *Verifier) mac(body []byte) []byte {
	m := hmac.New(v.newHash, v.secret)
	m.Write(body)
	return m.Sum(nil)
}
