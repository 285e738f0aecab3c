package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes a member's password with bcrypt at the cost
// configured via BCRYPT_COST. Cost is a knob, not a constant, so staging
// environments can run cheaper rounds than production.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches the stored bcrypt hash.
// The comparison is constant-time inside bcrypt; only the boolean leaves
// this package, never the error detail.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
