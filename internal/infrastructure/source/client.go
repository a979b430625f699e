package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/carpark-aggregator/internal/config"
	"github.com/carpark-aggregator/internal/domain"
	"github.com/carpark-aggregator/internal/domain/repository"
	apperrors "github.com/carpark-aggregator/internal/pkg/errors"
)

var (
	errNotFound    = errors.New("document not found")
	errCircuitOpen = errors.New("circuit breaker open")
)

type client struct {
	httpClient *http.Client
	logger     *zap.Logger

	maxRetries int
	backoffMin time.Duration
	backoffMax time.Duration
	deadline   time.Duration

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
}

// NewSourceClient создает HTTP-клиент источников с повторами и backoff
func NewSourceClient(cfg *config.SourceConfig, logger *zap.Logger) repository.SourceRepository {
	return &client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		logger:     logger,
		maxRetries: cfg.MaxRetries,
		backoffMin: cfg.BackoffMin,
		backoffMax: cfg.BackoffMax,
		deadline:   cfg.FetchDeadline,
		breakers:   make(map[string]*gobreaker.CircuitBreaker),
	}
}

// Fetch загружает сырой документ источника.
// Not-found ответ - постоянная ошибка без повторов; всё остальное
// повторяется до исчерпания попыток с растущей задержкой.
func (c *client) Fetch(ctx context.Context, src domain.Source) ([]byte, error) {
	// Общий потолок на все попытки, поверх таймаута одного запроса.
	ctx, cancel := context.WithTimeout(ctx, c.deadline)
	defer cancel()

	cb := c.breaker(src.Name)

	var lastErr error
	attempts := 0
	for attempt := 1; attempt <= c.maxRetries+1; attempt++ {
		attempts = attempt

		body, err := c.doOnce(ctx, cb, src)
		if err == nil {
			return body, nil
		}

		if errors.Is(err, errNotFound) {
			c.logger.Error("Source document not found, giving up",
				zap.String("source", src.Name),
				zap.String("url", src.URL))
			return nil, &apperrors.FetchError{Source: src.Name, Permanent: true, Attempts: attempt, Err: err}
		}

		lastErr = err

		// Повторы при открытом предохранителе бессмысленны.
		if errors.Is(err, errCircuitOpen) || attempt > c.maxRetries {
			break
		}

		delay := c.backoffDelay(attempt)
		c.logger.Warn("Source fetch failed, retrying",
			zap.String("source", src.Name),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", delay),
			zap.Error(err))

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			lastErr = ctx.Err()
		case <-timer.C:
			continue
		}
		break
	}

	c.logger.Error("Source fetch exhausted",
		zap.String("source", src.Name),
		zap.Int("attempts", attempts),
		zap.Error(lastErr))
	return nil, &apperrors.FetchError{Source: src.Name, Permanent: false, Attempts: attempts, Err: lastErr}
}

func (c *client) doOnce(ctx context.Context, cb *gobreaker.CircuitBreaker, src domain.Source) ([]byte, error) {
	result, err := cb.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to execute request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return nil, errNotFound
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}
		return body, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		return nil, err
	}
	return result.([]byte), nil
}

// backoffDelay растет от минимума к максимуму с каждой попыткой
func (c *client) backoffDelay(attempt int) time.Duration {
	delay := c.backoffMin << (attempt - 1)
	if delay > c.backoffMax || delay < c.backoffMin {
		delay = c.backoffMax
	}
	return delay
}

func (c *client) breaker(name string) *gobreaker.CircuitBreaker {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cb, ok := c.breakers[name]; ok {
		return cb
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     name,
		Interval: 1 * time.Minute,
		Timeout:  2 * time.Minute,
		// Порог заметно выше бюджета повторов одного прогона,
		// чтобы предохранитель не вмешивался в контракт повторов.
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 12
		},
	})
	c.breakers[name] = cb
	return cb
}
