package user

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/linkedin"

	"github.com/profacthq/profact-api/internal/config"
)

const (
	googleUserInfoURL   = "https://www.googleapis.com/oauth2/v2/userinfo"
	linkedinUserInfoURL = "https://api.linkedin.com/v2/userinfo"
)

// NewExchangers builds the provider registry from configuration.
func NewExchangers(cfg *config.Config) map[string]Exchanger {
	return map[string]Exchanger{
		ProviderGoogle: &googleExchanger{
			config: &oauth2.Config{
				ClientID:     cfg.Google.ClientID,
				ClientSecret: cfg.Google.ClientSecret,
				RedirectURL:  cfg.Google.RedirectURL,
				Endpoint:     google.Endpoint,
				Scopes:       []string{"openid", "email", "profile"},
			},
		},
		ProviderLinkedIn: &linkedinExchanger{
			config: &oauth2.Config{
				ClientID:     cfg.LinkedIn.ClientID,
				ClientSecret: cfg.LinkedIn.ClientSecret,
				RedirectURL:  cfg.LinkedIn.RedirectURL,
				Endpoint:     linkedin.Endpoint,
				Scopes:       []string{"openid", "email", "profile"},
			},
		},
	}
}

// --- Google ---

type googleExchanger struct {
	config *oauth2.Config
}

func (g *googleExchanger) Exchange(ctx context.Context, code string) (*SocialProfile, error) {
	tok, err := g.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("google code exchange: %w", err)
	}

	var info struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := fetchUserInfo(ctx, g.config, tok, googleUserInfoURL, &info); err != nil {
		return nil, fmt.Errorf("google userinfo: %w", err)
	}

	return &SocialProfile{
		Provider:       ProviderGoogle,
		ProviderUserID: info.ID,
		Email:          info.Email,
		Name:           info.Name,
	}, nil
}

// --- LinkedIn ---

type linkedinExchanger struct {
	config *oauth2.Config
}

// LinkedIn's OpenID Connect userinfo endpoint returns the member id as "sub".
func (l *linkedinExchanger) Exchange(ctx context.Context, code string) (*SocialProfile, error) {
	tok, err := l.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("linkedin code exchange: %w", err)
	}

	var info struct {
		Sub   string `json:"sub"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := fetchUserInfo(ctx, l.config, tok, linkedinUserInfoURL, &info); err != nil {
		return nil, fmt.Errorf("linkedin userinfo: %w", err)
	}

	return &SocialProfile{
		Provider:       ProviderLinkedIn,
		ProviderUserID: info.Sub,
		Email:          info.Email,
		Name:           info.Name,
	}, nil
}

// fetchUserInfo calls a provider userinfo endpoint with the exchanged token
// and decodes the JSON response into out.
func fetchUserInfo(ctx context.Context, cfg *oauth2.Config, tok *oauth2.Token, url string, out any) error {
	client := cfg.Client(ctx, tok)
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("userinfo returned %d: %s", resp.StatusCode, body)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
