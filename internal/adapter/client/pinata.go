package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const DefaultPinataBaseURL = "https://api.pinata.cloud"

type PinataConfig struct {
	APIKey     string
	APISecret  string
	GatewayURL string
	BaseURL    string
	// RequestsPerSecond throttles outbound pin calls. Zero disables throttling.
	RequestsPerSecond float64
}

// PinataClient pins files and JSON documents through the Pinata REST API.
type PinataClient struct {
	cfg     PinataConfig
	http    *http.Client
	limiter *rate.Limiter
}

type pinResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

func NewPinataClient(cfg PinataConfig) (*PinataClient, error) {
	if cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("pinata API credentials are not configured")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultPinataBaseURL
	}
	cfg.GatewayURL = strings.TrimRight(cfg.GatewayURL, "/")

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return &PinataClient{
		cfg:     cfg,
		http:    &http.Client{Timeout: 60 * time.Second},
		limiter: limiter,
	}, nil
}

func (p *PinataClient) PinFile(ctx context.Context, name string, r io.Reader) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", err
	}
	return p.pin(ctx, "/pinning/pinFileToIPFS", mw.FormDataContentType(), &body)
}

func (p *PinataClient) PinJSON(ctx context.Context, name string, v any) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"pinataContent":  v,
		"pinataMetadata": map[string]string{"name": name},
	})
	if err != nil {
		return "", err
	}
	return p.pin(ctx, "/pinning/pinJSONToIPFS", "application/json", bytes.NewReader(payload))
}

func (p *PinataClient) pin(ctx context.Context, path, contentType string, body io.Reader) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+path, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("pinata_api_key", p.cfg.APIKey)
	req.Header.Set("pinata_secret_api_key", p.cfg.APISecret)

	resp, err := p.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("pinata %s failed: %s: %s", path, resp.Status, strings.TrimSpace(string(msg)))
	}

	var out pinResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode pinata response: %w", err)
	}
	if out.IpfsHash == "" {
		return "", fmt.Errorf("pinata %s returned no IpfsHash", path)
	}
	return p.GatewayURL(out.IpfsHash), nil
}

func (p *PinataClient) GatewayURL(hash string) string {
	return p.cfg.GatewayURL + "/ipfs/" + hash
}
