package hash

import "golang.org/x/crypto/bcrypt"

// dummyHash is a valid bcrypt hash of an unguessable constant. Comparing
// against it when no user exists keeps the work factor of a failed login
// identical whether or not the email is registered.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

func HashPassword(password string) (string, error) {
	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashBytes), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// BurnPassword spends one bcrypt comparison on a throwaway hash. Called on
// the unknown-user path so it costs the same as a real mismatch.
func BurnPassword(password string) {
	_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
}
