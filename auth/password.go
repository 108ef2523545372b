package auth

import (
	"crypto/subtle"
	"errors"

	"jiahe-site/models"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// HashPassword hashes a password with bcrypt.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// CheckPasswordHash compares a password against a bcrypt hash.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// IsHashed reports whether s is a bcrypt hash rather than a plaintext password.
func IsHashed(s string) bool {
	_, err := bcrypt.Cost([]byte(s))
	return err == nil
}

// VerifyCredentials checks a submitted pair against the admin config. The
// password hash is always checked so an unknown user costs the same as a
// wrong password, and both fail with the same error.
func VerifyCredentials(admin models.AdminConfig, username, password string) error {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(admin.Username)) == 1
	passOK := CheckPasswordHash(password, admin.PasswordHash)
	if !userOK || !passOK {
		return ErrInvalidCredentials
	}
	return nil
}

// UpgradeLegacyPassword replaces a plaintext password in admin with its
// bcrypt hash. It reports whether anything changed.
func UpgradeLegacyPassword(admin *models.AdminConfig) (bool, error) {
	if admin.PasswordHash == "" || IsHashed(admin.PasswordHash) {
		return false, nil
	}
	hash, err := HashPassword(admin.PasswordHash)
	if err != nil {
		return false, err
	}
	admin.PasswordHash = hash
	return true, nil
}
