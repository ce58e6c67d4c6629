package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dgellow/firebase-front/internal/ioutil"
	"github.com/dgellow/firebase-front/internal/platform"
)

const defaultRegistrationBaseURL = "https://fcmregistrations.googleapis.com/v1"

// RegistrationClient exchanges a web push subscription plus the VAPID public
// key for a delivery token with the provider's registration API.
type RegistrationClient struct {
	projectID  string
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewRegistrationClient creates a registration client for the given project
func NewRegistrationClient(projectID, apiKey string) *RegistrationClient {
	return &RegistrationClient{
		projectID:  projectID,
		apiKey:     apiKey,
		baseURL:    defaultRegistrationBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type registrationRequest struct {
	Web struct {
		Endpoint          string `json:"endpoint"`
		P256dh            string `json:"p256dh"`
		Auth              string `json:"auth"`
		ApplicationPubKey string `json:"applicationPubKey"`
	} `json:"web"`
}

type registrationResponse struct {
	Token string `json:"token"`
}

// ExchangeToken exchanges the subscription for a delivery token. An empty
// token with nil error means the provider declined without failing; callers
// treat that as a configuration problem, not a crash.
func (c *RegistrationClient) ExchangeToken(ctx context.Context, sub platform.PushSubscription, vapidKey string) (string, error) {
	var reqBody registrationRequest
	reqBody.Web.Endpoint = sub.Endpoint
	reqBody.Web.P256dh = sub.P256dh
	reqBody.Web.Auth = sub.Auth
	reqBody.Web.ApplicationPubKey = vapidKey

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("encoding registration request: %w", err)
	}

	url := fmt.Sprintf("%s/projects/%s/registrations", c.baseURL, c.projectID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building registration request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling registration API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail := ioutil.ReadLimited(resp.Body, 1024)
		return "", fmt.Errorf("registration API returned status %d: %s", resp.StatusCode, detail)
	}

	var regResp registrationResponse
	if err := json.NewDecoder(resp.Body).Decode(&regResp); err != nil {
		return "", fmt.Errorf("decoding registration response: %w", err)
	}
	return regResp.Token, nil
}
