package utils

import "golang.org/x/crypto/bcrypt"

// HashAdminPassword produces the bcrypt hash expected in
// ADMIN_PASSWORD_HASH.  Operators run it through cmd/adminhash when
// provisioning the admin credential.
func HashAdminPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword compares the configured admin hash against a login
// attempt.  bcrypt's comparison is constant-time.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
