// File: internal/notifier/sender.go
package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"carmatch_backend/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Sender delivers one rendered message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
	Name() string
}

// LogSender writes messages to the log. It is the default channel.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Name() string { return "log" }

func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.logger.Info("Outbound message",
		zap.String("kind", string(msg.Kind)),
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return nil
}

// SESAPI is the part of the SES client used here.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESSender sends plain-text email through Amazon SES.
type SESSender struct {
	client SESAPI
	from   string
}

func NewSESSender(client SESAPI, from string) *SESSender {
	return &SESSender{client: client, from: from}
}

func (s *SESSender) Name() string { return "ses" }

func (s *SESSender) Send(ctx context.Context, msg Message) error {
	_, err := s.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{ToAddresses: []string{msg.To}},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(msg.Body), Charset: aws.String("UTF-8")},
			},
		},
		Source: aws.String(s.from),
	})
	if err != nil {
		return fmt.Errorf("ses send email: %w", err)
	}
	return nil
}

// SNSAPI is the part of the SNS client used here.
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSSender publishes messages to a topic; subscribers route them by the
// kind and recipient attributes.
type SNSSender struct {
	client   SNSAPI
	topicARN string
}

func NewSNSSender(client SNSAPI, topicARN string) *SNSSender {
	return &SNSSender{client: client, topicARN: topicARN}
}

func (s *SNSSender) Name() string { return "sns" }

func (s *SNSSender) Send(ctx context.Context, msg Message) error {
	_, err := s.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(s.topicARN),
		Subject:  aws.String(snsSubject(msg.Subject)),
		Message:  aws.String(msg.Body),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			"kind":      {DataType: aws.String("String"), StringValue: aws.String(string(msg.Kind))},
			"recipient": {DataType: aws.String("String"), StringValue: aws.String(msg.To)},
		},
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}

// snsSubject trims to the 100 characters SNS accepts.
func snsSubject(subject string) string {
	r := []rune(subject)
	if len(r) > 100 {
		return string(r[:100])
	}
	return subject
}

// RedisOutboxSender pushes messages onto a Redis list for an external mailer to drain.
type RedisOutboxSender struct {
	client *redis.Client
	key    string
}

func NewRedisOutboxSender(client *redis.Client, key string) *RedisOutboxSender {
	return &RedisOutboxSender{client: client, key: key}
}

func (s *RedisOutboxSender) Name() string { return "redis" }

type outboxEntry struct {
	Message
	QueuedAt string `json:"queuedAt"`
}

func (s *RedisOutboxSender) Send(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(outboxEntry{Message: msg, QueuedAt: time.Now().UTC().Format(time.RFC3339Nano)})
	if err != nil {
		return fmt.Errorf("failed to marshal outbox entry: %w", err)
	}
	if err := s.client.LPush(ctx, s.key, payload).Err(); err != nil {
		return fmt.Errorf("failed to push to redis outbox %q: %w", s.key, err)
	}
	return nil
}

// NewSender builds the sender selected by NOTIFIER_CHANNEL. The cleanup
// function releases any client it opened.
func NewSender(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Sender, func(), error) {
	logger = logger.Named("Notifier")
	switch cfg.NotifierChannel {
	case "ses":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.SESRegion))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load AWS config for SES: %w", err)
		}
		logger.Info("Outbound messages via SES", zap.String("region", cfg.SESRegion))
		return NewSESSender(ses.NewFromConfig(awsCfg), cfg.SESFromAddress), func() {}, nil
	case "sns":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.SNSRegion))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load AWS config for SNS: %w", err)
		}
		logger.Info("Outbound messages via SNS", zap.String("region", cfg.SNSRegion), zap.String("topic", cfg.SNSTopicARN))
		return NewSNSSender(sns.NewFromConfig(awsCfg), cfg.SNSTopicARN), func() {}, nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		logger.Info("Outbound messages via Redis outbox", zap.String("addr", cfg.RedisAddr), zap.String("key", cfg.RedisOutboxKey))
		return NewRedisOutboxSender(client, cfg.RedisOutboxKey), func() {
			if err := client.Close(); err != nil {
				logger.Warn("Failed to close redis client", zap.Error(err))
			}
		}, nil
	default:
		return NewLogSender(logger), func() {}, nil
	}
}
