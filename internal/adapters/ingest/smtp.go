// Package ingest feeds incoming email into the processing pipeline.
package ingest

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-smtp"
	"go.uber.org/zap"

	"github.com/mikey/llm-email-pipeline/internal/core"
	"github.com/mikey/llm-email-pipeline/internal/state"
)

// pipelineTimeout bounds a single end-to-end pipeline run per message
const pipelineTimeout = 2 * time.Minute

// SMTPIngestor accepts messages over SMTP and runs the pipeline on each one
type SMTPIngestor struct {
	pipeline        *core.Pipeline
	logger          *zap.Logger
	listenAddr      string
	domain          string
	maxMessageBytes int64
	readTimeout     time.Duration
	writeTimeout    time.Duration
	server          *smtp.Server
}

// NewSMTPIngestor creates a new SMTP ingestor
func NewSMTPIngestor(
	pipeline *core.Pipeline,
	logger *zap.Logger,
	listenAddr string,
	domain string,
	maxMessageBytes int64,
	readTimeout time.Duration,
	writeTimeout time.Duration,
) *SMTPIngestor {
	return &SMTPIngestor{
		pipeline:        pipeline,
		logger:          logger,
		listenAddr:      listenAddr,
		domain:          domain,
		maxMessageBytes: maxMessageBytes,
		readTimeout:     readTimeout,
		writeTimeout:    writeTimeout,
	}
}

// Start starts the SMTP server
func (i *SMTPIngestor) Start() error {
	i.server = smtp.NewServer(&smtpBackend{ingestor: i})

	i.server.Addr = i.listenAddr
	i.server.Domain = i.domain
	i.server.ReadTimeout = i.readTimeout
	i.server.WriteTimeout = i.writeTimeout
	i.server.MaxMessageBytes = i.maxMessageBytes
	i.server.MaxRecipients = 50
	i.server.AllowInsecureAuth = true

	i.logger.Info("SMTP ingestor starting", zap.String("address", i.listenAddr))

	go func() {
		if err := i.server.ListenAndServe(); err != nil {
			if err != smtp.ErrServerClosed {
				i.logger.Error("SMTP server error", zap.Error(err))
			}
		}
	}()

	return nil
}

// Stop stops the SMTP server
func (i *SMTPIngestor) Stop() error {
	if i.server != nil {
		return i.server.Close()
	}
	return nil
}

// process runs the pipeline on one raw message
func (i *SMTPIngestor) process(from string, data []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), pipelineTimeout)
	defer cancel()

	st := state.NewStore()
	st.Set(state.KeyEmailFileBytesB64, base64.StdEncoding.EncodeToString(data))

	start := time.Now()
	final, err := i.pipeline.Run(ctx, st)
	if err != nil {
		i.logger.Error("Pipeline run failed",
			zap.String("from", from),
			zap.String("parsing_message", final.GetString(state.KeyParsingMessage)),
			zap.Error(err))
		return fmt.Errorf("pipeline run failed: %w", err)
	}

	i.logger.Info("Message processed",
		zap.String("from", from),
		zap.String("category", final.GetString(state.KeyEmailCategory)),
		zap.Bool("has_auto_response", final.Has(state.KeyAutoResponse)),
		zap.Duration("duration", time.Since(start)))

	return nil
}

// smtpBackend implements the go-smtp backend
type smtpBackend struct {
	ingestor *SMTPIngestor
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{ingestor: b.ingestor}, nil
}

// smtpSession handles one SMTP transaction
type smtpSession struct {
	ingestor *SMTPIngestor
	from     string
}

// Mail records the envelope sender
func (s *smtpSession) Mail(from string, opts *smtp.MailOptions) error {
	s.from = from
	return nil
}

// Rcpt accepts any recipient; routing is not this service's concern
func (s *smtpSession) Rcpt(to string, opts *smtp.RcptOptions) error {
	return nil
}

// Data receives the message content and runs the pipeline
func (s *smtpSession) Data(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read message data: %w", err)
	}
	return s.ingestor.process(s.from, data)
}

// Reset clears the transaction state
func (s *smtpSession) Reset() {
	s.from = ""
}

// Logout ends the session
func (s *smtpSession) Logout() error {
	return nil
}
