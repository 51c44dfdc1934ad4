package platforms

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"nilclear/internal/audit"
	"nilclear/pkg/domain"
	dErrors "nilclear/pkg/domain-errors"
	"nilclear/pkg/requestcontext"
	"nilclear/pkg/secrets"
)

// =============================================================================
// Platform Registry Test Suite
// =============================================================================
// Justification for unit tests:
// Platform credentials gate every deal submission, and the athlete allow-list
// is the authorization boundary between platforms. The tests pin one-time
// secret exposure, the uniform failure shape on bad credentials, and grant
// revocation.

type PlatformsSuite struct {
	suite.Suite
	service  *Service
	platform domain.EntityID
	athlete  domain.EntityID
	now      time.Time
}

func TestPlatformsSuite(t *testing.T) {
	suite.Run(t, new(PlatformsSuite))
}

func (s *PlatformsSuite) SetupTest() {
	var err error
	s.service, err = New(NewInMemoryStore(), audit.NewPublisher(audit.NewInMemoryStore()))
	s.Require().NoError(err)
	s.platform[19] = 0x10
	s.athlete[19] = 0x20
	s.now = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
}

func (s *PlatformsSuite) ctx() context.Context {
	return requestcontext.WithTime(context.Background(), s.now)
}

func (s *PlatformsSuite) TestRegister() {
	s.Run("registration mints a secret and stores only its hash", func() {
		p, secret, err := s.service.Register(s.ctx(), s.platform, "DealBook")
		s.Require().NoError(err)
		s.NotEmpty(secret)
		s.NotEqual(secret, p.SecretHash)
		s.NoError(secrets.Verify(secret, p.SecretHash))
		s.Equal(s.now, p.CreatedAt)
	})

	s.Run("duplicate registration conflicts", func() {
		_, _, err := s.service.Register(s.ctx(), s.platform, "DealBook Again")
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("name is required", func() {
		var other domain.EntityID
		other[19] = 0x11
		_, _, err := s.service.Register(s.ctx(), other, "")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *PlatformsSuite) TestAuthenticate() {
	_, secret, err := s.service.Register(s.ctx(), s.platform, "DealBook")
	s.Require().NoError(err)

	s.Run("valid credentials authenticate", func() {
		p, err := s.service.Authenticate(s.ctx(), s.platform, secret)
		s.Require().NoError(err)
		s.Equal(s.platform, p.ID)
	})

	s.Run("wrong secret is unauthorized", func() {
		_, err := s.service.Authenticate(s.ctx(), s.platform, "not-the-secret")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("unknown platform fails identically to a wrong secret", func() {
		var unknown domain.EntityID
		unknown[19] = 0x99

		knownErr := func() error {
			_, err := s.service.Authenticate(s.ctx(), s.platform, "not-the-secret")
			return err
		}()
		unknownErr := func() error {
			_, err := s.service.Authenticate(s.ctx(), unknown, "not-the-secret")
			return err
		}()
		s.Equal(dErrors.MessageOf(knownErr), dErrors.MessageOf(unknownErr))
		s.Equal(dErrors.CodeOf(knownErr), dErrors.CodeOf(unknownErr))
	})
}

func (s *PlatformsSuite) TestAuthorization() {
	_, _, err := s.service.Register(s.ctx(), s.platform, "DealBook")
	s.Require().NoError(err)

	s.Run("ungranted platform is not authorized", func() {
		granted, err := s.service.Authorized(s.ctx(), s.platform, s.athlete)
		s.NoError(err)
		s.False(granted)
	})

	s.Run("granting allow-lists the platform for the athlete", func() {
		s.Require().NoError(s.service.AuthorizeAthlete(s.ctx(), s.platform, s.athlete))

		granted, err := s.service.Authorized(s.ctx(), s.platform, s.athlete)
		s.NoError(err)
		s.True(granted)
	})

	s.Run("grants are per athlete", func() {
		var other domain.EntityID
		other[19] = 0x21
		granted, err := s.service.Authorized(s.ctx(), s.platform, other)
		s.NoError(err)
		s.False(granted)
	})

	s.Run("revocation removes the grant", func() {
		s.Require().NoError(s.service.RevokeAthlete(s.ctx(), s.platform, s.athlete))

		granted, err := s.service.Authorized(s.ctx(), s.platform, s.athlete)
		s.NoError(err)
		s.False(granted)
	})

	s.Run("revoking a missing grant is not found", func() {
		err := s.service.RevokeAthlete(s.ctx(), s.platform, s.athlete)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("granting for an unregistered platform is not found", func() {
		var unknown domain.EntityID
		unknown[19] = 0x99
		err := s.service.AuthorizeAthlete(s.ctx(), unknown, s.athlete)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
