package utils

import (
	"math/rand/v2"
	"strconv"

	"github.com/google/uuid"
)

// ActivationCodeLength is the number of digits in an activation code.
const ActivationCodeLength = 4

const (
	minActivationCode = 1000
	maxActivationCode = 9999
)

func GenerateUUID() uuid.UUID {
	return uuid.New()
}

// GenerateActivationCode draws a 4-digit code uniformly from 1000-9999,
// so a code never starts with zero.
func GenerateActivationCode() string {
	n := minActivationCode + rand.IntN(maxActivationCode-minActivationCode+1)
	return strconv.Itoa(n)
}
