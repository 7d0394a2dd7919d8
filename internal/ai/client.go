package ai

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

// Client define la interfaz hacia el servicio externo de IA. Es un
// colaborador opaco: solo nos importa el contrato HTTP.
type Client interface {
	FashionRecommend(ctx context.Context, prompt string) (string, error)
	SalesForecast(ctx context.Context, payload json.RawMessage) (json.RawMessage, error)
}

// HTTPClient implementa Client contra el servicio FastAPI de IA.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient construye el cliente. El timeout de 60s es el único timeout
// del sistema: el forecast puede tardar.
func NewHTTPClient(baseURL string) *HTTPClient {
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *HTTPClient) FashionRecommend(ctx context.Context, prompt string) (string, error) {
	reqBody, err := json.Marshal(map[string]string{"prompt": prompt})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	respBody, err := c.post(ctx, "/fashion/recommend", reqBody)
	if err != nil {
		return "", err
	}

	var out struct {
		Success        bool   `json:"success"`
		Recommendation string `json:"recommendation"`
	}
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if !out.Success || out.Recommendation == "" {
		return "", fmt.Errorf("ai empty recommendation")
	}
	return out.Recommendation, nil
}

func (c *HTTPClient) SalesForecast(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}
	respBody, err := c.post(ctx, "/sales/forecast", payload)
	if err != nil {
		return nil, err
	}
	return respBody, nil
}

func (c *HTTPClient) post(ctx context.Context, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("ai http error: status=%d", resp.StatusCode)
	}
	return respBody, nil
}
