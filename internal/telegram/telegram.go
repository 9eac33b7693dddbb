// Package telegram reads recent chat messages and sends replies through the
// Telegram Bot API.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/MrJamesThe3rd/chatledger/internal/message"
	"github.com/MrJamesThe3rd/chatledger/internal/retry"
)

// ErrAPI wraps errors reported by the Bot API itself.
var ErrAPI = errors.New("telegram api error")

var allowedUpdates = []string{"message", "channel_post"}

type Client struct {
	endpoint string
	token    string
	window   int
	http     *http.Client
	retry    retry.Options
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.endpoint = endpoint(u) }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithWindow bounds the number of messages FetchRecent returns.
func WithWindow(n int) Option {
	return func(c *Client) { c.window = n }
}

func WithRetry(opts retry.Options) Option {
	return func(c *Client) { c.retry = opts }
}

// New builds a client without contacting the API; a bad token surfaces on the
// first call.
func New(token string, opts ...Option) *Client {
	c := &Client{
		endpoint: tgbotapi.APIEndpoint,
		token:    token,
		window:   200,
		http:     &http.Client{Timeout: 30 * time.Second},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func endpoint(base string) string {
	return strings.TrimRight(base, "/") + "/bot%s/%s"
}

// FetchRecent returns the most recent messages of chatID known to the bot,
// newest first.
func (c *Client) FetchRecent(ctx context.Context, chatID int64) ([]message.Message, error) {
	var updates []tgbotapi.Update

	err := c.do(ctx, func(bot *tgbotapi.BotAPI) error {
		var err error
		updates, err = bot.GetUpdates(tgbotapi.UpdateConfig{AllowedUpdates: allowedUpdates})

		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get updates: %w", err)
	}

	msgs := make([]message.Message, 0, len(updates))

	for _, u := range updates {
		m := u.Message
		if m == nil {
			m = u.ChannelPost
		}

		if m == nil || m.Chat == nil || m.Chat.ID != chatID {
			continue
		}

		msgs = append(msgs, toMessage(m))
	}

	sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].ID > msgs[j].ID })

	if len(msgs) > c.window {
		msgs = msgs[:c.window]
	}

	return msgs, nil
}

// SendReply posts text to chatID, threaded under replyTo when given.
func (c *Client) SendReply(ctx context.Context, chatID int64, text string, replyTo *int64) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if replyTo != nil {
		msg.ReplyToMessageID = int(*replyTo)
		msg.AllowSendingWithoutReply = true
	}

	err := c.do(ctx, func(bot *tgbotapi.BotAPI) error {
		_, err := bot.Send(msg)
		return err
	})
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	return nil
}

// do runs fn against a bot bound to ctx, retrying rate limits, server errors
// and transport failures.
func (c *Client) do(ctx context.Context, fn func(bot *tgbotapi.BotAPI) error) error {
	return retry.Do(ctx, c.retry, func(ctx context.Context) error {
		err := fn(c.bot(ctx))
		if err == nil {
			return nil
		}

		var apiErr *tgbotapi.Error
		if errors.As(err, &apiErr) {
			wrapped := fmt.Errorf("%w %d: %s", ErrAPI, apiErr.Code, apiErr.Message)
			if apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError {
				return wrapped
			}

			return retry.Permanent(wrapped)
		}

		// The token is part of the URL; keep it out of logs.
		return errors.New(strings.ReplaceAll(err.Error(), c.token, "<token>"))
	})
}

// bot returns a BotAPI whose requests carry ctx. The getMe handshake of
// tgbotapi.NewBotAPI is skipped.
func (c *Client) bot(ctx context.Context) *tgbotapi.BotAPI {
	bot := &tgbotapi.BotAPI{
		Token:  c.token,
		Client: contextClient{ctx: ctx, client: c.http},
		Buffer: 100,
	}
	bot.SetAPIEndpoint(c.endpoint)

	return bot
}

type contextClient struct {
	ctx    context.Context
	client *http.Client
}

func (cc contextClient) Do(req *http.Request) (*http.Response, error) {
	return cc.client.Do(req.WithContext(cc.ctx))
}

func toMessage(m *tgbotapi.Message) message.Message {
	msg := message.Message{
		ID:     int64(m.MessageID),
		Date:   time.Unix(int64(m.Date), 0).UTC(),
		ChatID: m.Chat.ID,
		Text:   m.Text,
	}

	if m.ReplyToMessage != nil {
		msg.ReplyTo = new(int64(m.ReplyToMessage.MessageID))
	}

	return msg
}
