package services

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/idtoken"

	"quizhub-backend/internal/models"
)

// GoogleVerifier checks Google-issued ID tokens against the OAuth client ID.
type GoogleVerifier struct {
	clientID string
	validate func(ctx context.Context, token, audience string) (*idtoken.Payload, error)
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{clientID: clientID, validate: idtoken.Validate}
}

func (v *GoogleVerifier) Verify(ctx context.Context, token string) (*models.Identity, error) {
	payload, err := v.validate(ctx, token, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("validate google id token: %w", err)
	}
	return identityFromPayload(payload)
}

func identityFromPayload(p *idtoken.Payload) (*models.Identity, error) {
	if p.Subject == "" {
		return nil, errors.New("google id token has no subject")
	}

	claim := func(name string) string {
		s, _ := p.Claims[name].(string)
		return s
	}

	if verified, ok := p.Claims["email_verified"].(bool); ok && !verified {
		return nil, errors.New("google account email is not verified")
	}

	return &models.Identity{
		Subject: p.Subject,
		Email:   claim("email"),
		Name:    claim("name"),
		Picture: claim("picture"),
	}, nil
}
