package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"track-wise-service/internal/domain/entity"
	"track-wise-service/internal/domain/repository"
	"track-wise-service/pkg/logger"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailNotifier mails container notifications through the Gmail API
type GmailNotifier struct {
	gmailService *gmail.Service
	sender       string
	recipients   []string
	logger       logger.Logger
}

// NewGmailNotifier creates a new Gmail notification channel
func NewGmailNotifier(
	ctx context.Context,
	tokenSource oauth2.TokenSource,
	sender string,
	recipients []string,
	logger logger.Logger,
) (repository.NotificationRepository, error) {
	service, err := gmail.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, err
	}

	return &GmailNotifier{
		gmailService: service,
		sender:       sender,
		recipients:   recipients,
		logger:       logger.With("channel", "gmail"),
	}, nil
}

// Name returns the channel name
func (s *GmailNotifier) Name() string {
	return "gmail"
}

// Send mails the notification to every recipient in one message
func (s *GmailNotifier) Send(ctx context.Context, n *entity.Notification) error {
	if len(s.recipients) == 0 {
		return nil
	}

	msg := &gmail.Message{
		Raw: encodeMessage(s.sender, s.recipients, n.Subject(), n.Text()),
	}

	sent, err := s.gmailService.Users.Messages.Send("me", msg).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	s.logger.Info("Notification mail sent",
		"messageId", sent.Id,
		"containerNumber", n.Number,
		"recipients", len(s.recipients))
	return nil
}

// encodeMessage builds a plain text RFC 2822 message encoded for the API
func encodeMessage(from string, to []string, subject, body string) string {
	var b strings.Builder
	if from != "" {
		fmt.Fprintf(&b, "From: %s\r\n", from)
	}
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return base64.URLEncoding.EncodeToString([]byte(b.String()))
}
