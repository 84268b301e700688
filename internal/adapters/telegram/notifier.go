package telegram

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

	"breakoutScanner/internal/ports"
)

const defaultAPIURL = "https://api.telegram.org"

// Notifier implements ports.Notifier against the Telegram Bot API.
type Notifier struct {
	botToken string
	chatID   string
	apiURL   string
	enabled  bool
	client   *http.Client
	logger   ports.Logger
}

// Config holds Telegram configuration.
type Config struct {
	BotToken string
	ChatID   string
	APIURL   string // Overrides the Bot API host (used in tests)
	Timeout  time.Duration
	Logger   ports.Logger
}

// apiResponse is the envelope every Bot API method returns.
type apiResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

// New creates a Telegram notifier. Without a token or chat ID the notifier is
// disabled and every send is a logged no-op.
func New(cfg Config) (*Notifier, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Telegram notifier")
	}
	apiURL := strings.TrimRight(cfg.APIURL, "/")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	n := &Notifier{
		botToken: cfg.BotToken,
		chatID:   cfg.ChatID,
		apiURL:   apiURL,
		enabled:  cfg.BotToken != "" && cfg.ChatID != "",
		client:   &http.Client{Timeout: timeout},
		logger:   cfg.Logger,
	}
	if !n.enabled {
		cfg.Logger.Warn(context.Background(), "Telegram token or chat ID missing, notifications disabled")
	}
	return n, nil
}

// IsEnabled reports whether messages are actually delivered.
func (n *Notifier) IsEnabled() bool {
	return n.enabled
}

// SendText sends a Markdown text message.
func (n *Notifier) SendText(ctx context.Context, msg string) error {
	if !n.enabled {
		n.logger.Debug(ctx, "Telegram disabled, dropping text message")
		return nil
	}

	payload := map[string]interface{}{
		"chat_id":    n.chatID,
		"text":       msg,
		"parse_mode": "Markdown",
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("SendText failed: %w: %w", ports.ErrNotificationFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.methodURL("sendMessage"), bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("SendText failed: %w: %w", ports.ErrNotificationFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return n.do(ctx, req, "SendText")
}

// SendImage sends a PNG photo with a Markdown caption.
func (n *Notifier) SendImage(ctx context.Context, image []byte, caption string) error {
	if !n.enabled {
		n.logger.Debug(ctx, "Telegram disabled, dropping image message")
		return nil
	}
	if len(image) == 0 {
		return fmt.Errorf("SendImage failed: %w: empty image", ports.ErrNotificationFailed)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fields := map[string]string{"chat_id": n.chatID, "caption": caption, "parse_mode": "Markdown"}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return fmt.Errorf("SendImage failed: %w: %w", ports.ErrNotificationFailed, err)
		}
	}
	part, err := mw.CreateFormFile("photo", "chart.png")
	if err != nil {
		return fmt.Errorf("SendImage failed: %w: %w", ports.ErrNotificationFailed, err)
	}
	if _, err := part.Write(image); err != nil {
		return fmt.Errorf("SendImage failed: %w: %w", ports.ErrNotificationFailed, err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("SendImage failed: %w: %w", ports.ErrNotificationFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.methodURL("sendPhoto"), &body)
	if err != nil {
		return fmt.Errorf("SendImage failed: %w: %w", ports.ErrNotificationFailed, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return n.do(ctx, req, "SendImage")
}

func (n *Notifier) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", n.apiURL, n.botToken, method)
}

func (n *Notifier) do(ctx context.Context, req *http.Request, op string) error {
	resp, err := n.client.Do(req)
	if err != nil {
		// The URL carries the bot token; keep it out of logs and errors.
		err = fmt.Errorf("%s failed: %w: request error", op, ports.ErrNotificationFailed)
		n.logger.Error(ctx, err, "Telegram request failed")
		return err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var parsed apiResponse
	_ = json.Unmarshal(raw, &parsed)

	if resp.StatusCode != http.StatusOK || !parsed.OK {
		err := fmt.Errorf("%s failed: %w: telegram API returned status %d: %s",
			op, ports.ErrNotificationFailed, resp.StatusCode, parsed.Description)
		n.logger.Error(ctx, err, "Telegram API rejected message", map[string]interface{}{"status": resp.StatusCode})
		return err
	}

	n.logger.Debug(ctx, op+" successful")
	return nil
}
