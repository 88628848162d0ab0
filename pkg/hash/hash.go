package hash

import "golang.org/x/crypto/bcrypt"

// HashPassword produces a salted bcrypt digest of the password. bcrypt embeds
// a fresh random salt on every call, so two hashes of the same password differ.
func HashPassword(password string) (string, error) {
	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(hashBytes), nil
}

// CheckPassword reports whether password matches the stored bcrypt hash.
// A mismatch is not an error, it is just false.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
