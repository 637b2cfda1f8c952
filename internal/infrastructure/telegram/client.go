package telegram

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/playforge/arcade-api/internal/platform/logging"
	"github.com/playforge/arcade-api/internal/platform/resilience"
	"github.com/playforge/arcade-api/internal/usecase"
)

const defaultBaseURL = "https://api.telegram.org"

var errTelegramTransient = crerr.New("telegram transient failure")

type ClientConfig struct {
	HTTPClient       *http.Client
	BaseURL          string
	Token            string
	Timeout          time.Duration
	Logger           *logging.Logger
	FailureThreshold int
	OpenTimeout      time.Duration
	HalfOpenMaxReq   int
}

// Client is a minimal Bot API client covering the single method the
// broadcast flow needs. Failures trip a shared circuit breaker so a dead bot
// token or a Telegram outage stops burning worker time quickly.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 10 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		token:      strings.TrimSpace(cfg.Token),
		logger:     logger,
		breaker:    resilience.NewCircuitBreaker(cfg.FailureThreshold, cfg.OpenTimeout, cfg.HalfOpenMaxReq),
	}
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func (c *Client) SendMessage(ctx context.Context, chatID string, text string) error {
	chatID = strings.TrimSpace(chatID)
	if chatID == "" {
		return fmt.Errorf("%w: chat id is required", usecase.ErrInvalidInput)
	}

	if err := c.breaker.Allow(); err != nil {
		c.logger.WarnContext(ctx, "telegram circuit breaker rejected request", "state", c.breaker.State())
		return fmt.Errorf("%w: telegram is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}

	err := c.call(ctx, "sendMessage", map[string]string{
		"chat_id": chatID,
		"text":    text,
	})
	if err != nil {
		if crerr.Is(err, errTelegramTransient) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
		return err
	}
	c.breaker.RecordSuccess()
	return nil
}

func (c *Client) call(ctx context.Context, method string, payload any) error {
	body, err := sonic.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", method, err)
	}

	fullURL := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: send %s request: %s", errTelegramTransient, method, c.redact(err.Error()))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: read %s response: %v", errTelegramTransient, method, err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return fmt.Errorf("%w: %s status=%d", errTelegramTransient, method, resp.StatusCode)
	}

	var parsed apiResponse
	if err := sonic.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	if !parsed.OK {
		return fmt.Errorf("%s rejected: %s", method, parsed.Description)
	}
	return nil
}

// redact strips the bot token from error text before it reaches logs.
func (c *Client) redact(value string) string {
	if c.token == "" {
		return value
	}
	return strings.ReplaceAll(value, c.token, "REDACTED")
}
