package logging

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"microblog/internal/mailer"
)

// AlertSubject is the subject of every error alert mail.
const AlertSubject = "Microblog Failure"

const (
	alertQueueSize   = 32
	alertSendTimeout = 10 * time.Second
)

// AdminMailWriter mails error, fatal and panic entries to the site
// administrators. Mail goes out on a background goroutine so logging never
// waits on SMTP; entries arriving while the queue is full are dropped.
type AdminMailWriter struct {
	mailer mailer.Mailer
	from   string
	to     []string

	queue     chan []byte
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func NewAdminMailWriter(m mailer.Mailer, from string, to []string) *AdminMailWriter {
	w := &AdminMailWriter{
		mailer: m,
		from:   from,
		to:     to,
		queue:  make(chan []byte, alertQueueSize),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go w.run()
	return w
}

// Write ignores entries without a level.
func (w *AdminMailWriter) Write(p []byte) (int, error) {
	return len(p), nil
}

func (w *AdminMailWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < zerolog.ErrorLevel || level >= zerolog.NoLevel {
		return len(p), nil
	}

	// zerolog reuses p after this call returns.
	entry := append([]byte(nil), p...)
	select {
	case <-w.stop:
	case w.queue <- entry:
	default:
	}
	return len(p), nil
}

// Close sends what is already queued and stops the sender.
func (w *AdminMailWriter) Close() error {
	w.closeOnce.Do(func() { close(w.stop) })
	<-w.done
	return nil
}

func (w *AdminMailWriter) run() {
	defer close(w.done)
	for {
		select {
		case entry := <-w.queue:
			w.send(entry)
		case <-w.stop:
			for {
				select {
				case entry := <-w.queue:
					w.send(entry)
				default:
					return
				}
			}
		}
	}
}

func (w *AdminMailWriter) send(entry []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), alertSendTimeout)
	defer cancel()

	err := w.mailer.Send(ctx, mailer.Message{
		From:     w.from,
		To:       w.to,
		Subject:  AlertSubject,
		TextBody: string(entry),
	})
	if err != nil {
		// Warn, not Error: a failed alert must not queue another alert.
		log.Warn().Str("component", "AdminMail").Err(err).Msg("failed to mail error alert")
	}
}
