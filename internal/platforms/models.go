package platforms

import (
	"time"

	"nilclear/pkg/domain"
)

// Platform is a marketplace or agency that submits deals on athletes'
// behalf. The secret is stored only as a bcrypt hash; the plaintext is shown
// once at registration.
type Platform struct {
	ID         domain.EntityID
	Name       string
	SecretHash string
	CreatedAt  time.Time
}

// Authorization links a platform to an athlete who has allow-listed it.
type Authorization struct {
	Platform  domain.EntityID
	Athlete   domain.EntityID
	GrantedAt time.Time
}
