// Package password wraps bcrypt hashing for stored credentials. bcrypt is
// salted per hash and cost-tunable, and its comparison is constant-time.
package password

import "golang.org/x/crypto/bcrypt"

// DefaultCost mirrors bcrypt's recommended default work factor.
const DefaultCost = bcrypt.DefaultCost

// Hash derives a salted bcrypt hash from a raw password.
func Hash(raw string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(raw), DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether raw matches the stored hash.
func Verify(hash, raw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)) == nil
}
