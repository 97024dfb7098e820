package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ObjectStore talks to the hosted backend's bucket API. It is a thin wrapper:
// one request per call, no retries of its own.
type ObjectStore struct {
	baseURL    string
	serviceKey string
	client     *http.Client
}

func NewObjectStore(baseURL, serviceKey string) *ObjectStore {
	return &ObjectStore{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		serviceKey: serviceKey,
		// No client-level timeout: callers own deadlines via context so a
		// slow upload can be abandoned without tearing down the client.
		client: &http.Client{},
	}
}

func (s *ObjectStore) Upload(ctx context.Context, bucket, path string, data []byte, contentType string) (ObjectInfo, error) {
	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, bucket, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return ObjectInfo{}, err
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("object upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return ObjectInfo{}, fmt.Errorf("object upload failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return ObjectInfo{Path: path}, nil
}

// PublicURL builds the public URL for an object. Deterministic, no network.
func (s *ObjectStore) PublicURL(bucket, path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, bucket, path)
}

func (s *ObjectStore) Session(ctx context.Context) (*Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("session fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("session fetch failed: status %d", resp.StatusCode)
	}

	var payload struct {
		ID        string    `json:"id"`
		Email     string    `json:"email"`
		ExpiresAt time.Time `json:"expires_at"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("session fetch failed: %w", err)
	}

	return &Session{UserID: payload.ID, Email: payload.Email, ExpiresAt: payload.ExpiresAt}, nil
}
