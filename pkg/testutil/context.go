package testutil

import (
	"context"
	"time"

	"github.com/kfrye1212/digitalpulse-tld/pkg/requestcontext"
)

// FixedTime is a stable operation timestamp for tests that assert on
// registration and expiry arithmetic.
var FixedTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// Context returns a background context carrying FixedTime as the
// operation timestamp, simulating what the request-time middleware does.
func Context() context.Context {
	return requestcontext.WithTime(context.Background(), FixedTime)
}
