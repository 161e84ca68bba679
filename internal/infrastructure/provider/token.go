package provider

import (
	"context"
	"fmt"

	"optionquotes-service/internal/application"
	"optionquotes-service/internal/domain"
)

// StaticTokenProvider serves a long-lived API token from configuration.
type StaticTokenProvider struct {
	Token string
}

var _ application.TokenProvider = StaticTokenProvider{}

func (p StaticTokenProvider) GetValidToken(context.Context) (domain.Token, error) {
	if p.Token == "" {
		return domain.Token{}, fmt.Errorf("static token: %w: not configured", application.ErrAuth)
	}
	return domain.Token{Value: p.Token}, nil
}
