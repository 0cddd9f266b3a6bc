package crypto

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var ErrMismatchedPin = errors.New("pin does not match")

// HashPin returns a salted bcrypt hash of pin.
func HashPin(pin string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(pin), cost)
	if err != nil {
		return "", err
	}

	return string(hashed), nil
}

// ComparePin returns ErrMismatchedPin if pin is not the origin of hashed.
func ComparePin(hashed, pin string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pin))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrMismatchedPin
	}

	return err
}
