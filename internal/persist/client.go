// Package persist is the HTTP client for the external persistence API:
// card updates, batch fetches, media, and lane archives. Calls are made
// after optimistic local writes; callers log failures and keep local state.
package persist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"nanosheet/internal/model"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

// UpdateCard PATCHes the card record and returns the canonical echo.
func (c *Client) UpdateCard(ctx context.Context, card model.Card) (model.Card, error) {
	body, err := json.Marshal(card)
	if err != nil {
		return model.Card{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch,
		c.BaseURL+"/api/cards/"+card.ID, bytes.NewReader(body))
	if err != nil {
		return model.Card{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	var out model.Card
	if err := c.doJSON(req, &out); err != nil {
		return model.Card{}, err
	}
	return out, nil
}

// CreateCard asks the service to mint a card; empty fields are filled
// server-side from the palette.
func (c *Client) CreateCard(ctx context.Context, title, color, prompt string) (model.Card, error) {
	body, err := json.Marshal(map[string]string{
		"title": title, "color": color, "prompt": prompt,
	})
	if err != nil {
		return model.Card{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+"/api/cards", bytes.NewReader(body))
	if err != nil {
		return model.Card{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	var out model.Card
	if err := c.doJSON(req, &out); err != nil {
		return model.Card{}, err
	}
	return out, nil
}

func (c *Client) FetchCards(ctx context.Context, ids []string) ([]model.Card, error) {
	body, err := json.Marshal(map[string][]string{"cardIds": ids})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+"/api/cards/batch", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var out []model.Card
	if err := c.doJSON(req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RegenerateResult is the service's summary of a sheet reseed.
type RegenerateResult struct {
	Status       string `json:"status"`
	SheetID      string `json:"sheetId"`
	Rows         int    `json:"rows"`
	Cols         int    `json:"cols"`
	CardsPerLane []int  `json:"cards_per_col"`
	TotalCards   int    `json:"total_cards"`
}

// Regenerate asks the service to clear sheetID and reseed it with random
// cards. cardsPerLane may be nil to let the service randomize lane lengths.
func (c *Client) Regenerate(ctx context.Context, sheetID string, lanes int, cardsPerLane []int) (RegenerateResult, error) {
	payload := map[string]any{"numCols": lanes}
	if len(cardsPerLane) > 0 {
		payload["cardsPerCol"] = cardsPerLane
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return RegenerateResult{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+"/api/sheets/"+sheetID+"/regenerate", bytes.NewReader(body))
	if err != nil {
		return RegenerateResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	var out RegenerateResult
	if err := c.doJSON(req, &out); err != nil {
		return RegenerateResult{}, err
	}
	return out, nil
}

// DownloadLane posts the lane's ordered cards and title and returns the
// binary archive the service builds from them.
func (c *Client) DownloadLane(ctx context.Context, title string, cards []model.Card) ([]byte, error) {
	body, err := json.Marshal(map[string]any{
		"laneTitle": title,
		"cards":     cards,
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+"/api/lanes/download", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lane download: %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// FetchMedia downloads a media asset by absolute URL.
func (c *Client) FetchMedia(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch media: %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

func (c *Client) doJSON(req *http.Request, out any) error {
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s %s: %s", req.Method, req.URL.Path, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
