package auth

import "time"

// Clock supplies the current time to token issuance and validation.
// Production code uses SystemClock; tests inject a fixed time to pin
// expiry boundaries exactly.
type Clock func() time.Time

// SystemClock returns the current UTC time.
func SystemClock() time.Time { return time.Now().UTC() }
