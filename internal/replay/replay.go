// Package replay serves chat messages from a semicolon-separated export so
// trackers can run without a live chat. Replies are written to an io.Writer
// and become part of the replayed conversation.
package replay

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/MrJamesThe3rd/chatledger/internal/encoding"
	"github.com/MrJamesThe3rd/chatledger/internal/message"
)

// Header is the expected first line of an export.
var Header = []string{"id", "date", "chat_id", "reply_to", "text"}

// Source implements the tracker message source over an in-memory conversation.
type Source struct {
	mu     sync.Mutex
	msgs   []message.Message
	out    io.Writer
	window int
	now    func() time.Time
}

// New builds a source from msgs. window bounds FetchRecent; zero means no bound.
func New(msgs []message.Message, out io.Writer, window int) *Source {
	return &Source{msgs: msgs, out: out, window: window, now: time.Now}
}

// Open reads the export at path.
func Open(path string, out io.Writer, window int) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open replay file: %w", err)
	}
	defer f.Close()

	msgs, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return New(msgs, out, window), nil
}

// Parse reads an export in any common encoding. Dates are RFC 3339;
// reply_to may be empty.
func Parse(r io.Reader) ([]message.Message, error) {
	utf8r, charset, err := encoding.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	slog.Debug("decoding replay export", "charset", charset)

	reader := csv.NewReader(utf8r)
	reader.Comma = ';'
	reader.FieldsPerRecord = len(Header)
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	if len(rows) == 0 {
		return nil, nil
	}

	for i, h := range Header {
		if strings.TrimSpace(rows[0][i]) != h {
			return nil, fmt.Errorf("unexpected header %q, want %q", strings.Join(rows[0], ";"), strings.Join(Header, ";"))
		}
	}

	msgs := make([]message.Message, 0, len(rows)-1)

	for i, row := range rows[1:] {
		m, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+2, err)
		}

		msgs = append(msgs, m)
	}

	return msgs, nil
}

func parseRow(row []string) (message.Message, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(row[0]), 10, 64)
	if err != nil {
		return message.Message{}, fmt.Errorf("parse id %q: %w", row[0], err)
	}

	date, err := time.Parse(time.RFC3339, strings.TrimSpace(row[1]))
	if err != nil {
		return message.Message{}, fmt.Errorf("parse date %q: %w", row[1], err)
	}

	chatID, err := strconv.ParseInt(strings.TrimSpace(row[2]), 10, 64)
	if err != nil {
		return message.Message{}, fmt.Errorf("parse chat id %q: %w", row[2], err)
	}

	m := message.Message{ID: id, Date: date, ChatID: chatID, Text: row[4]}

	if s := strings.TrimSpace(row[3]); s != "" {
		replyTo, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return message.Message{}, fmt.Errorf("parse reply_to %q: %w", row[3], err)
		}

		m.ReplyTo = &replyTo
	}

	return m, nil
}

// FetchRecent returns the messages of chatID, newest first.
func (s *Source) FetchRecent(_ context.Context, chatID int64) ([]message.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []message.Message

	for _, m := range s.msgs {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })

	if s.window > 0 && len(out) > s.window {
		out = out[:s.window]
	}

	return out, nil
}

// SendReply writes text to the output and appends it to the conversation.
func (s *Source) SendReply(_ context.Context, chatID int64, text string, replyTo *int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var next int64
	for _, m := range s.msgs {
		next = max(next, m.ID)
	}

	next++

	header := fmt.Sprintf("--- message %d to chat %d", next, chatID)
	if replyTo != nil {
		header += fmt.Sprintf(" in reply to %d", *replyTo)
	}

	if _, err := fmt.Fprintf(s.out, "%s ---\n%s\n\n", header, text); err != nil {
		return fmt.Errorf("write reply: %w", err)
	}

	s.msgs = append(s.msgs, message.Message{
		ID:      next,
		Date:    s.now().UTC(),
		ChatID:  chatID,
		Text:    text,
		ReplyTo: replyTo,
	})

	return nil
}
