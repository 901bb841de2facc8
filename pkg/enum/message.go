package enum

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/chulbong-kr/wordscan/pkg/types"
)

// maxMessageLine bounds one line of a message log.
const maxMessageLine = 4 << 20

// Message is one line of a chat log in JSON form.
type Message struct {
	Channel string    `json:"channel"`
	Sender  string    `json:"sender"`
	SentAt  time.Time `json:"sent_at"`
	Text    string    `json:"text"`
}

// MessageEnumerator yields each message of a chat log as its own blob.
// Lines holding a JSON object are decoded as a Message; any other non-empty
// line is a message with only text, attributed to the default channel.
type MessageEnumerator struct {
	r       io.Reader
	channel string
}

// NewMessageEnumerator reads messages from r. channel names messages that
// carry none.
func NewMessageEnumerator(r io.Reader, channel string) *MessageEnumerator {
	return &MessageEnumerator{r: r, channel: channel}
}

// Enumerate reads the log to the end.
func (e *MessageEnumerator) Enumerate(ctx context.Context, fn BlobFunc) error {
	sc := bufio.NewScanner(e.r)
	sc.Buffer(make([]byte, 64*1024), maxMessageLine)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		if err := canceled(ctx); err != nil {
			return err
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		msg := Message{Text: line}
		if strings.HasPrefix(line, "{") {
			if err := json.Unmarshal([]byte(line), &msg); err != nil {
				return fmt.Errorf("line %d: decoding message: %w", lineNo, err)
			}
		}
		if msg.Text == "" {
			continue
		}
		if msg.Channel == "" {
			msg.Channel = e.channel
		}

		content := []byte(msg.Text)
		prov := types.MessageProvenance{Channel: msg.Channel, Sender: msg.Sender, SentAt: msg.SentAt}
		if err := fn(content, types.ComputeBlobID(content), prov); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading messages: %w", err)
	}
	return nil
}
