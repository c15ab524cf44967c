package security

import "golang.org/x/crypto/bcrypt"

// PasswordCost is the bcrypt work factor for every stored hash. Changing it
// only affects new hashes; existing ones keep the cost encoded in them.
const PasswordCost = 10

// HashPassword hashes a plain text password with bcrypt.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), PasswordCost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// helper that compares a bcrypt hash with a plaintext password.

func CheckPassword(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
