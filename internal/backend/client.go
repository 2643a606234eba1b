package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Domenick1991/airbooking-desk/config"
	"github.com/Domenick1991/airbooking-desk/internal/domain"
)

// HTTPError is a non-2xx answer from the backend API.
type HTTPError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %s -> %d: %s", e.Method, e.Path, e.Status, e.Body)
}

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(cfg config.BackendConfig) *Client {
	return NewClientWithHTTP(cfg.BaseURL, &http.Client{Timeout: cfg.Timeout()})
}

func NewClientWithHTTP(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

func (c *Client) Countries(ctx context.Context) ([]domain.Country, error) {
	var out []domain.Country
	if err := c.getJSON(ctx, "/countries/enabled", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DollarRate(ctx context.Context) (*domain.DollarRate, error) {
	var out domain.DollarRate
	if err := c.getJSON(ctx, "/dollaronline/last", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Destinations(ctx context.Context) ([]domain.Destination, error) {
	var out []domain.Destination
	if err := c.getJSON(ctx, "/destinations", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) OnlineTemp(ctx context.Context, invoiceIDTemp, reservationIDTemp string) (*domain.OnlineTemp, error) {
	path := fmt.Sprintf("/reservations/onlinetemp/%s/%s", url.PathEscape(invoiceIDTemp), url.PathEscape(reservationIDTemp))
	var out domain.OnlineTemp
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateReservationOnline posts the reservation and returns the payment
// session the visitor must be redirected to. It is sent exactly once: there
// is no retry and no idempotency key.
func (c *Client) CreateReservationOnline(ctx context.Context, payload *domain.ReservationPayload) (*domain.PaymentSession, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal reservation: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/reservations/createreservationonline", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &domain.SubmissionError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &domain.SubmissionError{
			StatusCode: resp.StatusCode,
			Status:     statusText(resp),
		}
	}

	var envelope struct {
		Response domain.PaymentSession `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, &domain.SubmissionError{StatusCode: resp.StatusCode, Status: statusText(resp), Err: fmt.Errorf("decode json: %w", err)}
	}
	if envelope.Response.ProcessURL == "" {
		return nil, &domain.SubmissionError{StatusCode: resp.StatusCode, Status: "payment session without processUrl"}
	}
	return &envelope.Response, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &HTTPError{
			Method: http.MethodGet,
			Path:   path,
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(b)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}

// statusText mirrors the browser's Response.statusText.
func statusText(resp *http.Response) string {
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return resp.Status
}
