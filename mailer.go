package authflows

import (
	"context"
	"encoding/json"
	"io"
	"sync"
)

// Mailer delivers the engine's notification messages. Implementations
// own transport, retries, and templating beyond the inline HTML bodies
// the engine composes.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// NoOpMailer silently discards all messages. Useful in tests and in
// deployments that have not wired delivery yet.
type NoOpMailer struct{}

func (NoOpMailer) Send(context.Context, string, string, string) error { return nil }

// WriterMailer writes each message as a JSON line to an [io.Writer].
type WriterMailer struct {
	writer io.Writer
	mu     sync.Mutex
}

func NewWriterMailer(w io.Writer) *WriterMailer {
	return &WriterMailer{
		writer: w,
	}
}

func (m *WriterMailer) Send(_ context.Context, to, subject, htmlBody string) error {
	if m == nil || m.writer == nil {
		return nil
	}

	data, err := json.Marshal(struct {
		To      string `json:"to"`
		Subject string `json:"subject"`
		Body    string `json:"body"`
	}{To: to, Subject: subject, Body: htmlBody})
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.writer.Write(data); err != nil {
		return err
	}
	_, err = m.writer.Write([]byte("\n"))
	return err
}
