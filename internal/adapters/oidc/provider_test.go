package oidc

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestNewProvider_RequiresConfig(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		cfg  ProviderConfig
	}{
		{name: "missing client id", cfg: ProviderConfig{ClientSecret: "s", RedirectURL: "r", IssuerURL: "i"}},
		{name: "missing client secret", cfg: ProviderConfig{ClientID: "c", RedirectURL: "r", IssuerURL: "i"}},
		{name: "missing redirect url", cfg: ProviderConfig{ClientID: "c", ClientSecret: "s", IssuerURL: "i"}},
		{name: "missing issuer url", cfg: ProviderConfig{ClientID: "c", ClientSecret: "s", RedirectURL: "r"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewProvider(ctx, tc.cfg)
			require.Error(t, err)
		})
	}
}

func TestProvider_Begin(t *testing.T) {
	p := &Provider{
		config: &oauth2.Config{
			ClientID:    "client-1",
			RedirectURL: "https://go.example.com/callback",
			Scopes:      []string{"openid"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  "https://idp.example.com/auth",
				TokenURL: "https://idp.example.com/token",
			},
		},
	}

	hs, err := p.Begin(context.Background())
	require.NoError(t, err)

	assert.Len(t, hs.State, 32)
	assert.Len(t, hs.Nonce, 32)
	assert.NotEqual(t, hs.State, hs.Nonce)

	u, err := url.Parse(hs.AuthURL)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, hs.State, q.Get("state"))
	assert.Equal(t, hs.Nonce, q.Get("nonce"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "client-1", q.Get("client_id"))
	assert.Equal(t, "https://go.example.com/callback", q.Get("redirect_uri"))
}

func TestProvider_Begin_FreshStatePerCall(t *testing.T) {
	p := &Provider{
		config: &oauth2.Config{
			Endpoint: oauth2.Endpoint{AuthURL: "https://idp.example.com/auth"},
		},
	}

	first, err := p.Begin(context.Background())
	require.NoError(t, err)
	second, err := p.Begin(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, first.State, second.State)
	assert.NotEqual(t, first.Nonce, second.Nonce)
}

func TestNormalizeIssuer(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "https://idp.example.com", want: "https://idp.example.com"},
		{in: "https://idp.example.com/", want: "https://idp.example.com"},
		{in: "https://idp.example.com/.well-known/openid-configuration", want: "https://idp.example.com"},
		{in: "https://idp.example.com/realms/x/.well-known/openid-configuration", want: "https://idp.example.com/realms/x"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, normalizeIssuer(tc.in), "issuer %q", tc.in)
	}
}

func TestGenerateRandomString(t *testing.T) {
	s, err := generateRandomString(32)
	require.NoError(t, err)
	assert.Len(t, s, 32)

	s, err = generateRandomString(0)
	require.NoError(t, err)
	assert.Empty(t, s)

	first, err := generateRandomString(32)
	require.NoError(t, err)
	second, err := generateRandomString(32)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}
