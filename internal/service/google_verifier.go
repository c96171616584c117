package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	apperrors "github.com/spec-kit/blog-service/pkg/util"
)

// IdentityVerifier validates an opaque external assertion and returns the
// verified identity. The auth core never talks to the provider network
// directly; everything behind this interface is a black box to it.
type IdentityVerifier interface {
	Verify(ctx context.Context, assertion string) (*ExternalIdentity, error)
}

const googleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// GoogleVerifier validates Google ID tokens via the tokeninfo endpoint and
// checks the audience against the configured OAuth client.
type GoogleVerifier struct {
	clientID string
	endpoint string
	client   *http.Client
}

// NewGoogleVerifier builds the verifier.
func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{
		clientID: clientID,
		endpoint: googleTokenInfoURL,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type tokenInfoResponse struct {
	Sub     string `json:"sub"`
	Aud     string `json:"aud"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Verify checks the ID token with Google and returns the external identity.
func (v *GoogleVerifier) Verify(ctx context.Context, assertion string) (*ExternalIdentity, error) {
	if v.clientID == "" {
		return nil, fmt.Errorf("google client id is not configured")
	}

	endpoint := v.endpoint + "?id_token=" + url.QueryEscape(assertion)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("verify google token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewUnauthorized("invalid id token")
	}

	var info tokenInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, apperrors.NewUnauthorized("invalid id token")
	}
	if info.Aud != v.clientID {
		return nil, apperrors.NewUnauthorized("invalid id token")
	}
	if info.Sub == "" || info.Email == "" {
		return nil, apperrors.NewUnauthorized("invalid id token")
	}

	return &ExternalIdentity{
		ExternalID: info.Sub,
		Email:      info.Email,
		Name:       info.Name,
		PictureURL: info.Picture,
	}, nil
}
