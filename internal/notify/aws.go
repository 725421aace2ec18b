package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"reservation-agent/internal/common/config"
	commonerrors "reservation-agent/internal/common/errors"
	"reservation-agent/internal/common/logger"
	"reservation-agent/internal/models"
)

// Interfaces for mocking AWS clients in tests.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// AWSNotifier delivers email via SES and SMS via SNS, per method. Channels
// not enabled in configuration fall back to stub behavior so the action
// contract ({sent:true, method, dest}) is preserved either way.
type AWSNotifier struct {
	config    config.NotificationConfig
	logger    logger.Logger
	sesClient SESService
	snsClient SNSService
}

func NewAWSNotifier(ctx context.Context, cfg config.NotificationConfig, log logger.Logger) (*AWSNotifier, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return &AWSNotifier{
		config:    cfg,
		logger:    log.WithFields(map[string]interface{}{"component": "notify"}),
		sesClient: ses.NewFromConfig(awsCfg),
		snsClient: sns.NewFromConfig(awsCfg),
	}, nil
}

// NewAWSNotifierWithClients wires explicit clients. Used by tests.
func NewAWSNotifierWithClients(cfg config.NotificationConfig, sesClient SESService, snsClient SNSService, log logger.Logger) *AWSNotifier {
	return &AWSNotifier{
		config:    cfg,
		logger:    log.WithFields(map[string]interface{}{"component": "notify"}),
		sesClient: sesClient,
		snsClient: snsClient,
	}
}

func (n *AWSNotifier) Send(ctx context.Context, method, dest, message string) (models.NotificationReceipt, error) {
	switch method {
	case "email":
		if !n.config.Email.Enabled {
			break
		}
		if err := n.sendEmail(ctx, dest, message); err != nil {
			return models.NotificationReceipt{}, commonerrors.NewNotificationSendFailedError(method, err)
		}
	case "sms":
		if !n.config.SMS.Enabled {
			break
		}
		if err := n.sendSMS(ctx, dest, message); err != nil {
			return models.NotificationReceipt{}, commonerrors.NewNotificationSendFailedError(method, err)
		}
	}

	return models.NotificationReceipt{Sent: true, Method: method, Dest: dest}, nil
}

func (n *AWSNotifier) sendEmail(ctx context.Context, dest, message string) error {
	_, err := n.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(n.config.Email.FromEmail),
		Destination: &sestypes.Destination{
			ToAddresses: []string{dest},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String("Reservation update")},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(message)},
			},
		},
	})
	return err
}

func (n *AWSNotifier) sendSMS(ctx context.Context, dest, message string) error {
	_, err := n.snsClient.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(dest),
		Message:     aws.String(message),
	})
	return err
}
