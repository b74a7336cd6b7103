// internal/workers/communication/send-alert/handler.go
package sendalert

import (
	"context"
	"fmt"
	"strings"
	"time"

	commonaws "ai-post-scheduler/internal/common/aws"
	"ai-post-scheduler/internal/common/errors"
	"ai-post-scheduler/internal/common/logger"
	"ai-post-scheduler/internal/common/retry"
	"ai-post-scheduler/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/google/uuid"
)

const (
	TaskType = "send-alert"
)

// Define interfaces for mocking
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Handler sends operator alerts by SES email or to an SNS topic.
type Handler struct {
	config    *Config
	logger    logger.Logger
	sesClient SESService
	snsClient SNSService
}

func NewHandler(ctx context.Context, config *Config, log logger.Logger) (*Handler, error) {
	h := NewHandlerWithClients(config, nil, nil, log)
	if !config.Enabled {
		return h, nil
	}

	switch config.Channel {
	case ChannelSNS:
		client, err := commonaws.NewSNSClient(ctx, config.Region)
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		h.snsClient = client
	default:
		client, err := commonaws.NewSESClient(ctx, config.Region)
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		h.sesClient = client
	}
	return h, nil
}

func NewHandlerWithClients(config *Config, sesClient SESService, snsClient SNSService, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
		sesClient: sesClient,
		snsClient: snsClient,
	}
}

// Execute renders and sends one alert. A disabled sender returns status
// "disabled" without error; a delivery failure returns status "failed" and
// a NOTIFICATION_SEND_FAILED error.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	notification := h.render(input)

	if !h.config.Enabled {
		notification.Status = models.NotificationStatusDisabled
		return h.output(notification), nil
	}

	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	var err error
	switch h.config.Channel {
	case ChannelSNS:
		err = h.publishTopic(ctx, notification)
	default:
		err = h.sendEmail(ctx, notification)
	}
	if err != nil {
		notification.Status = models.NotificationStatusFailed
		sendErr := errors.NewNotificationSendFailedError(input.AlertType, err)
		h.logger.Error("alert send failed", map[string]interface{}{
			"channel":   notification.Channel,
			"alertType": input.AlertType,
			"error":     sendErr,
		})
		return h.output(notification), sendErr
	}

	notification.Status = models.NotificationStatusSent
	notification.SentAt = time.Now().UTC().Format(time.RFC3339)
	h.logger.Info("alert sent", map[string]interface{}{
		"channel":        notification.Channel,
		"alertType":      input.AlertType,
		"notificationId": notification.ID,
	})
	return h.output(notification), nil
}

// NotifyExhausted alerts about a remote call that ran out of attempts. It
// still sends when ctx is already cancelled.
func (h *Handler) NotifyExhausted(ctx context.Context, exhausted *retry.ExhaustedError, metadata map[string]interface{}) {
	_, _ = h.Execute(context.WithoutCancel(ctx), &Input{
		AlertType: TypeRetryExhausted,
		Operation: exhausted.Operation,
		Attempts:  exhausted.Attempts,
		Error:     exhausted.Err.Error(),
		Metadata:  metadata,
	})
}

func (h *Handler) NotifySmokeTestFailed(ctx context.Context, err error) {
	_, _ = h.Execute(context.WithoutCancel(ctx), &Input{
		AlertType: TypeSmokeTestFailed,
		Operation: "smoke-test",
		Error:     err.Error(),
	})
}

func (h *Handler) render(input *Input) models.Notification {
	data := map[string]interface{}{
		"operation": input.Operation,
		"attempts":  input.Attempts,
		"error":     input.Error,
	}
	for k, v := range input.Metadata {
		data[k] = v
	}

	tpl, ok := templates[input.AlertType]
	if !ok {
		tpl = template{subject: input.AlertType, body: "{{error}}"}
	}

	subject := renderTemplate(tpl.subject, data)
	if h.config.SubjectPrefix != "" {
		subject = h.config.SubjectPrefix + " " + subject
	}

	return models.Notification{
		ID:        uuid.New().String(),
		Channel:   h.channel(),
		Subject:   subject,
		Body:      renderTemplate(tpl.body, data),
		Payload:   data,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

func (h *Handler) channel() string {
	if h.config.Channel == "" {
		return ChannelSES
	}
	return h.config.Channel
}

func (h *Handler) output(n models.Notification) *Output {
	return &Output{NotificationID: n.ID, Status: n.Status, SentAt: n.SentAt}
}

func (h *Handler) sendEmail(ctx context.Context, n models.Notification) error {
	if h.sesClient == nil {
		return fmt.Errorf("ses client not configured")
	}
	_, err := h.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: h.config.ToEmails,
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(n.Subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(n.Body)},
			},
		},
		Source: aws.String(h.config.FromEmail),
	})
	return err
}

func (h *Handler) publishTopic(ctx context.Context, n models.Notification) error {
	if h.snsClient == nil {
		return fmt.Errorf("sns client not configured")
	}
	// SNS subjects are limited to 100 characters
	subject := n.Subject
	if len(subject) > 100 {
		subject = subject[:100]
	}
	_, err := h.snsClient.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(h.config.TopicARN),
		Subject:  aws.String(subject),
		Message:  aws.String(n.Body),
	})
	return err
}

// renderTemplate fills {{key}} placeholders and drops the ones without data.
func renderTemplate(tmpl string, data map[string]interface{}) string {
	result := tmpl

	for k, v := range data {
		placeholder := "{{" + k + "}}"
		value := ""
		if s, ok := v.(string); ok {
			value = s
		} else if v != nil {
			value = fmt.Sprintf("%v", v)
		}
		result = strings.ReplaceAll(result, placeholder, value)
	}

	for {
		start := strings.Index(result, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], "}}")
		if end == -1 {
			break
		}
		end += start + 2
		result = result[:start] + result[end:]
	}

	return result
}
