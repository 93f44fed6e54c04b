package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// RelayClient calls the first-party relay endpoint, which holds the
// backend credential.
type RelayClient struct {
	url    string
	client *http.Client
}

func NewRelayClient(url string, client *http.Client) *RelayClient {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &RelayClient{url: url, client: client}
}

type relayRequest struct {
	Messages []Message `json:"messages"`
}

type relayResponse struct {
	Reply string `json:"reply"`
	Error string `json:"error"`
}

func (c *RelayClient) Generate(ctx context.Context, messages []Message) (string, error) {
	body, err := json.Marshal(relayRequest{Messages: messages})
	if err != nil {
		return "", errors.Wrap(err, "encoding chat request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "building chat request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "calling chat relay")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", ErrRateLimited
	}
	var out relayResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil && resp.StatusCode == http.StatusOK {
		return "", errors.Wrap(err, "decoding chat reply")
	}
	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("chat endpoint failed: %d %s", resp.StatusCode, out.Error)
	}
	return out.Reply, nil
}
