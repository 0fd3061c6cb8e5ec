package mailer

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/dmitrijs2005/medmind-auth/internal/common"
	"github.com/dmitrijs2005/medmind-auth/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSES struct {
	in  *sesv2.SendEmailInput
	err error
}

func (f *fakeSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.in = in
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("m-1")}, nil
}

func stubAWS(t *testing.T, client *fakeSES, loadErr error) *sesv2.Options {
	t.Helper()
	origLoad := loadDefaultAWSConfig
	origNew := newSESClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newSESClientFromConfig = origNew
	})

	var applied sesv2.Options
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			if err := fn(&lo); err != nil {
				t.Fatalf("load options fn error: %v", err)
			}
		}
		if lo.Region != "eu-west-1" {
			t.Fatalf("region not applied: %q", lo.Region)
		}
		if lo.Credentials == nil {
			t.Fatalf("static credentials not applied")
		}
		return aws.Config{}, loadErr
	}
	newSESClientFromConfig = func(cfg aws.Config, optFns ...func(*sesv2.Options)) sesAPI {
		for _, fn := range optFns {
			fn(&applied)
		}
		return client
	}
	return &applied
}

func sesConfig() SESConfig {
	return SESConfig{
		From:            "no-reply@example.com",
		FromName:        "MedMind",
		Region:          "eu-west-1",
		AccessKeyID:     "AKIA",
		SecretAccessKey: "secret",
		BaseEndpoint:    "http://127.0.0.1:4566",
	}
}

func TestNewSESTransport_AppliesOptions(t *testing.T) {
	client := &fakeSES{}
	applied := stubAWS(t, client, nil)

	tr, err := NewSESTransport(context.Background(), sesConfig())
	require.NoError(t, err)
	require.NotNil(t, applied.BaseEndpoint)
	assert.Equal(t, "http://127.0.0.1:4566", *applied.BaseEndpoint)

	require.NoError(t, tr.Send(context.Background(), Message{To: "a@b.com", Subject: "S", HTML: "<p>h</p>", Text: "t"}))
	require.NotNil(t, client.in)
	assert.Equal(t, `"MedMind" <no-reply@example.com>`, *client.in.FromEmailAddress)
	assert.Equal(t, []string{"a@b.com"}, client.in.Destination.ToAddresses)
	assert.Equal(t, "S", *client.in.Content.Simple.Subject.Data)
	assert.Equal(t, "t", *client.in.Content.Simple.Body.Text.Data)
	assert.Equal(t, "<p>h</p>", *client.in.Content.Simple.Body.Html.Data)
}

func TestNewSESTransport_Errors(t *testing.T) {
	_, err := NewSESTransport(context.Background(), SESConfig{Region: "eu-west-1"})
	require.Error(t, err, "sender is required")

	stubAWS(t, &fakeSES{}, errors.New("no config"))
	_, err = NewSESTransport(context.Background(), sesConfig())
	require.Error(t, err)
}

func TestSESTransport_SendError(t *testing.T) {
	client := &fakeSES{err: errors.New("throttled")}
	stubAWS(t, client, nil)

	tr, err := NewSESTransport(context.Background(), sesConfig())
	require.NoError(t, err)
	require.Error(t, tr.Send(context.Background(), Message{To: "a@b.com"}))
}

func TestNewTransport(t *testing.T) {
	tr, err := NewTransport(context.Background(), "log", SESConfig{}, logging.Nop{})
	require.NoError(t, err)
	require.IsType(t, &LogTransport{}, tr)
	require.NoError(t, tr.Send(context.Background(), Message{To: "a@b.com", Subject: "S"}))

	_, err = NewTransport(context.Background(), "pigeon", SESConfig{}, logging.Nop{})
	require.ErrorIs(t, err, common.ErrMailerNotConfigured)
}
