package notifications

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/you/campusauth/domain"
)

type fakeSES struct {
	input *ses.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, in *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSESMailer_Send(t *testing.T) {
	fake := &fakeSES{}
	mailer := newSESMailer(fake, "no-reply@unimigo.app")

	err := mailer.Send(context.Background(), domain.EmailMessage{
		To:       "alice@lpu.in",
		Subject:  "hello",
		TextBody: "text",
		HTMLBody: "<p>html</p>",
	})
	require.NoError(t, err)

	require.NotNil(t, fake.input)
	assert.Equal(t, "no-reply@unimigo.app", aws.ToString(fake.input.Source))
	assert.Equal(t, []string{"alice@lpu.in"}, fake.input.Destination.ToAddresses)
	assert.Equal(t, "hello", aws.ToString(fake.input.Message.Subject.Data))
	assert.Equal(t, "text", aws.ToString(fake.input.Message.Body.Text.Data))
	assert.Equal(t, "<p>html</p>", aws.ToString(fake.input.Message.Body.Html.Data))
}

func TestSESMailer_SendError(t *testing.T) {
	boom := errors.New("throttled")
	mailer := newSESMailer(&fakeSES{err: boom}, "no-reply@unimigo.app")

	err := mailer.Send(context.Background(), domain.EmailMessage{To: "alice@lpu.in"})
	assert.ErrorIs(t, err, boom)
}

func TestLogMailer_Send(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	mailer := NewLogMailer(zap.New(core))

	require.NoError(t, mailer.Send(context.Background(), domain.EmailMessage{To: "alice@lpu.in", Subject: "s"}))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "alice@lpu.in", logs.All()[0].ContextMap()["to"])
}

func TestOTPEmail(t *testing.T) {
	tenant := &domain.Tenant{Name: "Lovely Professional University"}

	msg, err := OTPEmail("alice.sharma@lpu.in", "482913", tenant, 10)
	require.NoError(t, err)

	assert.Equal(t, "alice.sharma@lpu.in", msg.To)
	assert.Equal(t, "Your UNIMIGO Login OTP", msg.Subject)
	assert.Contains(t, msg.TextBody, "482913")
	assert.Contains(t, msg.TextBody, "Hi Alice,")
	assert.Contains(t, msg.HTMLBody, "482913")
	assert.Contains(t, msg.HTMLBody, "Lovely Professional University")
	assert.Contains(t, msg.HTMLBody, domain.DefaultTheme.PrimaryColor)
}

func TestFirstName(t *testing.T) {
	tests := []struct {
		email    string
		expected string
	}{
		{email: "alice.sharma@lpu.in", expected: "Alice"},
		{email: "élodie.martin@univ.fr", expected: "Élodie"},
		{email: "ölçer@itu.edu.tr", expected: "Ölçer"},
		{email: "42@lpu.in", expected: "42"},
		{email: ".hidden@lpu.in", expected: ".hidden"},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.expected, firstName(tt.email))
		})
	}
}
