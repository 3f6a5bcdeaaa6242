package usecase

import (
	"time"

	"user-activation/pkg/utils"
)

// ActivationCodes issues activation codes and their expiry.
type ActivationCodes struct {
	ttl time.Duration
}

func NewActivationCodes(ttl time.Duration) *ActivationCodes {
	return &ActivationCodes{ttl: ttl}
}

func (a *ActivationCodes) GenerateCode() string {
	return utils.GenerateActivationCode()
}

// ExpirationTime returns the instant after which a code issued at now is dead.
func (a *ActivationCodes) ExpirationTime(now time.Time) time.Time {
	return now.Add(a.ttl)
}
