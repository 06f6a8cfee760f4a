package testutil

import (
	"encoding/hex"

	id "github.com/kfrye1212/digitalpulse-tld/pkg/domain"
)

// Wallet returns a deterministic wallet ID filled with the given byte.
// Handy for tests that need distinct, readable identities.
func Wallet(b byte) id.WalletID {
	var w id.WalletID
	for i := range w {
		w[i] = b
	}
	return w
}

// WalletHex returns the hex encoding of Wallet(b), for transport-level tests.
func WalletHex(b byte) string {
	w := Wallet(b)
	return hex.EncodeToString(w[:])
}
