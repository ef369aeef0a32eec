package notifications

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"github.com/you/campusauth/domain"
)

// sesAPI is the subset of *ses.Client the mailer calls
type sesAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESMailer implements domain.Mailer using AWS SES
type SESMailer struct {
	client      sesAPI
	fromAddress string
}

// NewSESMailer creates a mailer from the default AWS credential chain
func NewSESMailer(ctx context.Context, region, fromAddress string) (*SESMailer, error) {
	if fromAddress == "" {
		return nil, fmt.Errorf("ses: from address is required")
	}
	opts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("ses: load aws config: %w", err)
	}
	return newSESMailer(ses.NewFromConfig(cfg), fromAddress), nil
}

func newSESMailer(client sesAPI, fromAddress string) *SESMailer {
	return &SESMailer{client: client, fromAddress: fromAddress}
}

// Send implements domain.Mailer
func (m *SESMailer) Send(ctx context.Context, msg domain.EmailMessage) error {
	body := &types.Body{}
	if msg.TextBody != "" {
		body.Text = &types.Content{
			Data:    aws.String(msg.TextBody),
			Charset: aws.String("UTF-8"),
		}
	}
	if msg.HTMLBody != "" {
		body.Html = &types.Content{
			Data:    aws.String(msg.HTMLBody),
			Charset: aws.String("UTF-8"),
		}
	}

	input := &ses.SendEmailInput{
		Source:      aws.String(m.fromAddress),
		Destination: &types.Destination{ToAddresses: []string{msg.To}},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(msg.Subject),
				Charset: aws.String("UTF-8"),
			},
			Body: body,
		},
	}

	if _, err := m.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", msg.To, err)
	}
	return nil
}
