package notifyservice

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Event событие бронирования или отмены для аудита и уведомлений
type Event struct {
	Type        string    `json:"type"` // booking.settled | booking.cancelled | refund.processed
	BookingCode string    `json:"booking_code"`
	HotelID     int64     `json:"hotel_id"`
	Amount      float64   `json:"amount,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Client fire-and-forget клиент сервиса уведомлений
// Контракта на ответ нет: ошибки доставки только логируются и никогда
// не влияют на исход операции
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента сервиса уведомлений
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// Send отправляет событие, не дожидаясь подтверждения обработки
func (c *Client) Send(ctx context.Context, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		c.log.Warn("notifyservice: failed to marshal event %s: %v", event.Type, err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/internal/events", bytes.NewReader(payload))
	if err != nil {
		c.log.Warn("notifyservice: failed to create request: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("notifyservice: failed to deliver event %s for booking=%s: %v", event.Type, event.BookingCode, err)
		return
	}
	_ = resp.Body.Close()

	c.log.Info("notifyservice: delivered event %s for booking=%s", event.Type, event.BookingCode)
}
