package paymentgw

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент платежного шлюза
// Движок бронирований сам не ходит в шлюз из-под блокировок: клиента
// вызывают снаружи транзакций и только записывают результат
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента платежного шлюза
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// Charge списывает сумму по платежному токену
func (c *Client) Charge(ctx context.Context, amount float64, paymentToken string) (*ChargeResponse, error) {
	var resp ChargeResponse
	err := c.post(ctx, "/internal/payments/charge", ChargeRequest{
		Amount:       amount,
		PaymentToken: paymentToken,
	}, &resp)
	if err != nil {
		return nil, err
	}

	if !resp.Success {
		c.log.Warn("Charge declined by gateway, amount=%.2f", amount)
		return &resp, ErrDeclined
	}

	c.log.Info("Charge succeeded, amount=%.2f, tx=%s", amount, resp.TransactionID)
	return &resp, nil
}

// Refund возвращает сумму по исходной транзакции
func (c *Client) Refund(ctx context.Context, transactionID string, amount float64) (*RefundResponse, error) {
	var resp RefundResponse
	err := c.post(ctx, "/internal/payments/refund", RefundRequest{
		TransactionID: transactionID,
		Amount:        amount,
	}, &resp)
	if err != nil {
		return nil, err
	}

	if !resp.Success {
		c.log.Warn("Refund declined by gateway, tx=%s, amount=%.2f", transactionID, amount)
		return &resp, ErrDeclined
	}

	c.log.Info("Refund succeeded, tx=%s, amount=%.2f, ref=%s", transactionID, amount, resp.RefundReference)
	return &resp, nil
}

func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal request: %v", ErrInternal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(raw))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	return nil
}
