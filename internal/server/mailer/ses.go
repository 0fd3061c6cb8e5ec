package mailer

import (
	"context"
	"errors"
	"net/mail"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

const charset = "UTF-8"

// SESConfig holds what the SES transport needs. Empty credentials fall back
// to the default AWS credential chain.
type SESConfig struct {
	From            string
	FromName        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	BaseEndpoint    string
}

// sesAPI is the slice of the SES v2 client used here.
type sesAPI interface {
	SendEmail(ctx context.Context, in *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// Seams for tests.
var (
	loadDefaultAWSConfig   = config.LoadDefaultConfig
	newSESClientFromConfig = func(cfg aws.Config, optFns ...func(*sesv2.Options)) sesAPI {
		return sesv2.NewFromConfig(cfg, optFns...)
	}
)

// SESTransport delivers messages through Amazon SES (v2 API).
type SESTransport struct {
	client sesAPI
	from   string
}

func NewSESTransport(ctx context.Context, c SESConfig) (*SESTransport, error) {
	if c.From == "" {
		return nil, errors.New("ses: sender address is required")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(c.Region)}
	if c.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKeyID, c.SecretAccessKey, ""),
		))
	}

	cfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	client := newSESClientFromConfig(cfg, func(o *sesv2.Options) {
		if c.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(c.BaseEndpoint)
		}
	})

	from := (&mail.Address{Name: c.FromName, Address: c.From}).String()
	return &SESTransport{client: client, from: from}, nil
}

func (t *SESTransport) Send(ctx context.Context, msg Message) error {
	_, err := t.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(t.from),
		Destination:      &types.Destination{ToAddresses: []string{msg.To}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String(charset)},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(msg.HTML), Charset: aws.String(charset)},
					Text: &types.Content{Data: aws.String(msg.Text), Charset: aws.String(charset)},
				},
			},
		},
	})
	return err
}
