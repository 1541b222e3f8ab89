package services

import (
	"crypto/rand"
	"math/big"
)

const (
	pinLen    = 6
	pinDigits = "0123456789"
)

// GeneratePIN returns a 6-digit PIN that is not a single repeated digit or
// a plain ascending/descending run. Uses crypto/rand. Do not log the result.
func GeneratePIN() (string, error) {
	for {
		b := make([]byte, pinLen)
		for i := range b {
			n, err := rand.Int(rand.Reader, big.NewInt(int64(len(pinDigits))))
			if err != nil {
				return "", err
			}
			b[i] = pinDigits[n.Int64()]
		}
		if !WeakPIN(string(b)) {
			return string(b), nil
		}
	}
}

// WeakPIN reports PINs like 000000, 123456 or 987654.
func WeakPIN(pin string) bool {
	if len(pin) < 2 {
		return true
	}
	same, up, down := true, true, true
	for i := 1; i < len(pin); i++ {
		d := int(pin[i]) - int(pin[i-1])
		same = same && d == 0
		up = up && d == 1
		down = down && d == -1
	}
	return same || up || down
}
