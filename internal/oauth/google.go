package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"auth_service/internal/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// Profile is the identity assertion obtained from Google after a code
// exchange. The service trusts it as-is: Google has already verified the
// email.
type Profile struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	AvatarURL string `json:"picture"`
}

// Google wraps the oauth2 client config. It is constructed once in main and
// injected; there is no package-level state.
type Google struct {
	config *oauth2.Config
	client *http.Client
}

func NewGoogle(cfg config.Google) *Google {
	return &Google{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		client: http.DefaultClient,
	}
}

func (g *Google) AuthCodeURL(state string) string {
	return g.config.AuthCodeURL(state)
}

// Exchange trades the authorization code for an access token and fetches the
// user's profile.
func (g *Google) Exchange(ctx context.Context, code string) (Profile, error) {
	const op = "oauth.google.Exchange"

	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return Profile{}, fmt.Errorf("%s: code exchange failed: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, googleUserInfoURL, nil)
	if err != nil {
		return Profile{}, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	resp, err := g.client.Do(req)
	if err != nil {
		return Profile{}, fmt.Errorf("%s: failed to fetch user info: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Profile{}, fmt.Errorf("%s: user info request returned %d", op, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Profile{}, fmt.Errorf("%s: failed to read response: %w", op, err)
	}

	var profile Profile
	if err := json.Unmarshal(body, &profile); err != nil {
		return Profile{}, fmt.Errorf("%s: failed to decode user info: %w", op, err)
	}

	if profile.ID == "" || profile.Email == "" {
		return Profile{}, fmt.Errorf("%s: incomplete user info", op)
	}

	return profile, nil
}
