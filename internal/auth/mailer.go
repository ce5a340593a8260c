package auth

import (
	"context"
	"log"
)

// ConsoleMailer logs verification mail instead of sending it. Stands in for
// a real provider in offline and test setups.
type ConsoleMailer struct{ BaseURL string }

func (m ConsoleMailer) SendVerification(_ context.Context, to, token string) error {
	log.Printf("verification mail to %s: %s/auth/verify?token=%s", to, m.BaseURL, token)
	return nil
}
