package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/rs/zerolog"

	"github.com/guttosm/dipwatch/internal/domain/models"
	"github.com/guttosm/dipwatch/internal/logger"
)

const charsetUTF8 = "UTF-8"

// SendEmailAPI is the slice of the SES v2 client the notifier uses.
type SendEmailAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SES sends the report as a plain-text email through Amazon SES.
type SES struct {
	client SendEmailAPI
	log    zerolog.Logger
}

// NewSES constructs an SES notifier. client is usually *sesv2.Client.
func NewSES(client SendEmailAPI) *SES {
	return &SES{client: client, log: logger.With("notify.ses")}
}

// Notify sends one email from n.Sender to every recipient.
//
// Behavior:
//   - Subject and text body are sent as simple content, both UTF-8.
//   - The SES message id is logged on success.
//
// Returns:
//   - error: when n has no recipients or SES rejects the request.
func (s *SES) Notify(ctx context.Context, n models.Notification) error {
	if len(n.Recipients) == 0 {
		return fmt.Errorf("ses: no recipients")
	}
	out, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(n.Sender),
		Destination:      &types.Destination{ToAddresses: n.Recipients},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Charset: aws.String(charsetUTF8), Data: aws.String(n.Subject)},
				Body: &types.Body{
					Text: &types.Content{Charset: aws.String(charsetUTF8), Data: aws.String(n.Body)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("ses send: %w", err)
	}
	s.log.Info().Str("message_id", aws.ToString(out.MessageId)).Int("recipients", len(n.Recipients)).Msg("email sent")
	return nil
}
