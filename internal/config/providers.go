package config

import (
	"os"
	"strings"
)

// ProviderConfig describes one external identity provider. Provider
// differences are data: endpoints, scopes, whether the provider round-trips
// an anti-CSRF state value, and where the user id lives in the userinfo
// response.
type ProviderConfig struct {
	Name         string
	AuthURL      string
	TokenURL     string
	UserinfoURL  string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string

	// UsesState controls generation and verification of the anti-CSRF
	// state parameter for this provider.
	UsesState bool

	// IdentityPath is the JSON path to the user id in the userinfo
	// response, e.g. ["id"] or ["response", "id"].
	IdentityPath []string
}

// catalog holds the endpoint and response-shape facts for the supported
// providers. Credentials come from the environment; a provider is enabled
// only when its client id is set.
var catalog = []ProviderConfig{
	{
		Name:         "kakao",
		AuthURL:      "https://kauth.kakao.com/oauth/authorize",
		TokenURL:     "https://kauth.kakao.com/oauth/token",
		UserinfoURL:  "https://kapi.kakao.com/v2/user/me",
		UsesState:    false,
		IdentityPath: []string{"id"},
	},
	{
		Name:         "naver",
		AuthURL:      "https://nid.naver.com/oauth2.0/authorize",
		TokenURL:     "https://nid.naver.com/oauth2.0/token",
		UserinfoURL:  "https://openapi.naver.com/v1/nid/me",
		UsesState:    true,
		IdentityPath: []string{"response", "id"},
	},
	{
		Name:         "google",
		AuthURL:      "https://accounts.google.com/o/oauth2/v2/auth",
		TokenURL:     "https://oauth2.googleapis.com/token",
		UserinfoURL:  "https://www.googleapis.com/oauth2/v2/userinfo",
		Scopes:       []string{"openid", "email", "profile"},
		UsesState:    false,
		IdentityPath: []string{"id"},
	},
}

func loadProviders() []ProviderConfig {
	var enabled []ProviderConfig
	for _, p := range catalog {
		prefix := strings.ToUpper(p.Name)
		p.ClientID = os.Getenv(prefix + "_CLIENT_ID")
		if p.ClientID == "" {
			continue
		}
		p.ClientSecret = os.Getenv(prefix + "_CLIENT_SECRET")
		p.RedirectURL = os.Getenv(prefix + "_REDIRECT_URL")
		enabled = append(enabled, p)
	}
	return enabled
}
