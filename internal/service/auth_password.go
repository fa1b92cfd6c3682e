package service

import (
	"context"
	"crypto/subtle"
	"slices"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = bcrypt.DefaultCost

func hashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// isHashed reports whether a stored password is a bcrypt hash. Anything
// else is a legacy plaintext value.
func isHashed(stored string) bool {
	return strings.HasPrefix(stored, "$2")
}

// checkPassword verifies a login attempt against the stored value.
func checkPassword(stored, given string) bool {
	if stored == "" {
		return false
	}
	if isHashed(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}

// setPasswordHash swaps a user's stored password when it still equals
// expected. Persisted like any user change, without an audit entry.
func (d *Desk) setPasswordHash(ctx context.Context, userID, expected, hash string) bool {
	_, span := deskTracer.Start(ctx, "Desk.setPasswordHash")
	defer span.End()

	d.mu.Lock()
	defer d.mu.Unlock()

	i := d.userIndex(userID)
	if i < 0 || d.users[i].Password != expected {
		return false
	}
	d.users = slices.Clone(d.users)
	d.users[i].Password = hash
	d.emitUsers()
	return true
}
