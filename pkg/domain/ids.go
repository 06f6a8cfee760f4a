// Package domain provides the identifier primitives shared by every module.
//
// Wallets and unique tokens are identified by fixed-width 32-byte values.
// They are compared directly as byte arrays, never as formatted text, and
// are hex-encoded at the transport boundary.
package domain

import (
	"encoding/hex"
	"fmt"
)

// WalletID identifies a wallet (caller, owner, authority, treasury).
type WalletID [32]byte

// TokenID identifies a unique token issued alongside a domain record.
// The zero value means no token is attached.
type TokenID [32]byte

// ParseWalletID validates and decodes a hex-encoded wallet identifier.
func ParseWalletID(s string) (WalletID, error) {
	var w WalletID
	if err := parseFixed(s, w[:], "wallet id"); err != nil {
		return WalletID{}, err
	}
	return w, nil
}

// ParseTokenID validates and decodes a hex-encoded token identifier.
func ParseTokenID(s string) (TokenID, error) {
	var t TokenID
	if err := parseFixed(s, t[:], "token id"); err != nil {
		return TokenID{}, err
	}
	return t, nil
}

func parseFixed(s string, dst []byte, what string) error {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", what, err)
	}
	if len(raw) != len(dst) {
		return fmt.Errorf("invalid %s: expected %d bytes, got %d", what, len(dst), len(raw))
	}
	copy(dst, raw)
	return nil
}

func (w WalletID) String() string {
	return hex.EncodeToString(w[:])
}

// IsZero reports whether the wallet ID is unset.
func (w WalletID) IsZero() bool {
	return w == WalletID{}
}

func (t TokenID) String() string {
	return hex.EncodeToString(t[:])
}

// IsZero reports whether the token ID is unset.
func (t TokenID) IsZero() bool {
	return t == TokenID{}
}

// MarshalText implements encoding.TextMarshaler so IDs serialize as hex in JSON.
func (w WalletID) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (w *WalletID) UnmarshalText(text []byte) error {
	parsed, err := ParseWalletID(string(text))
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (t TokenID) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TokenID) UnmarshalText(text []byte) error {
	parsed, err := ParseTokenID(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
