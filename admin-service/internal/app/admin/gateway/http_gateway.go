package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"pinemarket/pkg/metrics"
)

// httpGateway - реализация ResourceGateway поверх JSON REST API
// бэкенда каталога. Один экземпляр на ресурс (products, categories).
type httpGateway[T any] struct {
	baseURL  string // например http://localhost:3001
	resource string // products | categories
	client   *http.Client
}

// NewHTTPGateway создает шлюз для одного ресурса бэкенда каталога.
// Таймаут обязателен: подвисший запрос не должен держать операцию
// админ-панели вечно.
func NewHTTPGateway[T any](baseURL, resource string, timeout time.Duration) ResourceGateway[T] {
	return &httpGateway[T]{
		baseURL:  baseURL,
		resource: resource,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// List забирает коллекцию целиком. Бэкенд отдает голый JSON массив.
func (g *httpGateway[T]) List(ctx context.Context) ([]T, error) {
	var records []T
	if err := g.do(ctx, http.MethodGet, g.collectionURL(), "list", nil, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

// Create отправляет POST на коллекцию. ID уже назначен контроллером;
// бэкенд принимает клиентский ID как есть.
func (g *httpGateway[T]) Create(ctx context.Context, record T) (T, error) {
	var created T
	if err := g.do(ctx, http.MethodPost, g.collectionURL(), "create", record, &created); err != nil {
		return created, err
	}
	return created, nil
}

// Update отправляет PUT - полную замену записи
func (g *httpGateway[T]) Update(ctx context.Context, id string, record T) (T, error) {
	var updated T
	if err := g.do(ctx, http.MethodPut, g.recordURL(id), "update", record, &updated); err != nil {
		return updated, err
	}
	return updated, nil
}

// Delete отправляет DELETE по ID записи
func (g *httpGateway[T]) Delete(ctx context.Context, id string) error {
	return g.do(ctx, http.MethodDelete, g.recordURL(id), "delete", nil, nil)
}

// do выполняет один HTTP вызов к бэкенду и мапит статусы в ошибки шлюза
func (g *httpGateway[T]) do(ctx context.Context, method, url, operation string, body interface{}, out interface{}) error {
	start := time.Now()
	err := g.doOnce(ctx, method, url, body, out)

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.GatewayRequestsTotal.WithLabelValues(g.resource, operation, outcome).Inc()
	metrics.GatewayRequestDuration.WithLabelValues(g.resource, operation).Observe(time.Since(start).Seconds())

	return err
}

func (g *httpGateway[T]) doOnce(ctx context.Context, method, url string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackend, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusConflict:
		return ErrConflict
	case resp.StatusCode >= 400:
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%w: status %d: %s", ErrBackend, resp.StatusCode, string(data))
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrBackend, err)
	}

	return nil
}

func (g *httpGateway[T]) collectionURL() string {
	return g.baseURL + "/" + g.resource
}

func (g *httpGateway[T]) recordURL(id string) string {
	return g.baseURL + "/" + g.resource + "/" + id
}
