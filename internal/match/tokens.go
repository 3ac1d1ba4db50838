package match

import (
	"fmt"
	"math/rand"
)

const (
	lobbyPrefix      = "PSDL-"
	passwordLength   = 6
	passwordAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// GenerateLobbyName returns an opaque lobby identifier: the literal
// "PSDL-" prefix followed by a uniformly random 6-digit number.
func GenerateLobbyName(rng *rand.Rand) string {
	return fmt.Sprintf("%s%d", lobbyPrefix, 100000+rng.Intn(900000))
}

// GeneratePassword returns a random lowercase alphanumeric string of
// length 6.
func GeneratePassword(rng *rand.Rand) string {
	buf := make([]byte, passwordLength)
	for i := range buf {
		buf[i] = passwordAlphabet[rng.Intn(len(passwordAlphabet))]
	}
	return string(buf)
}
