//go:build integration

package publisher

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"
	"github.com/testcontainers/testcontainers-go/wait"

	"story_client/internal/domain"
)

type RabbitMQIntegrationSuite struct {
	suite.Suite
	ctx       context.Context
	container *rabbitmq.RabbitMQContainer
	amqpURL   string
	logger    *slog.Logger
}

func (s *RabbitMQIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()
	s.logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	container, err := rabbitmq.Run(s.ctx,
		"rabbitmq:3.13-management-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Server startup complete").
				WithStartupTimeout(60*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	amqpURL, err := container.AmqpURL(s.ctx)
	s.Require().NoError(err)
	s.amqpURL = amqpURL
}

func (s *RabbitMQIntegrationSuite) TearDownSuite() {
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func TestRabbitMQIntegrationSuite(t *testing.T) {
	suite.Run(t, new(RabbitMQIntegrationSuite))
}

func (s *RabbitMQIntegrationSuite) config(name string) Config {
	return Config{
		URL:        s.amqpURL,
		Exchange:   "exchange-" + name,
		RoutingKey: "key-" + name,
		QueueName:  "queue-" + name,
	}
}

func (s *RabbitMQIntegrationSuite) TestPublisher_Connection() {
	pub, err := NewRabbitMQ(s.config("connection"), s.logger)
	s.NoError(err)
	s.NotNil(pub)

	s.NoError(pub.Close())
}

func (s *RabbitMQIntegrationSuite) TestPublisher_StoryCreated() {
	cfg := s.config("created")
	pub, err := NewRabbitMQ(cfg, s.logger)
	s.Require().NoError(err)
	defer pub.Close()

	story := &domain.Story{
		ID:        "s1",
		Title:     "Title",
		Author:    "Author",
		URL:       "https://example.com/s1",
		Username:  "alice",
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	event := &domain.Event{
		Action:    domain.ActionStoryCreated,
		Username:  "alice",
		StoryID:   "s1",
		Story:     story,
		Timestamp: time.Now().UTC(),
	}

	s.NoError(pub.Publish(s.ctx, event))

	msg := s.consumeMessage(cfg)
	s.Require().NotNil(msg)
	s.Equal("application/json", msg.ContentType)
	s.Equal(domain.ActionStoryCreated, msg.Type)
	s.Equal(uint8(amqp.Persistent), msg.DeliveryMode)

	var received domain.Event
	s.Require().NoError(json.Unmarshal(msg.Body, &received))
	s.Equal(domain.ActionStoryCreated, received.Action)
	s.Equal("s1", received.StoryID)
	s.Require().NotNil(received.Story)
	s.Equal("Title", received.Story.Title)
	s.True(story.CreatedAt.Equal(received.Story.CreatedAt))
}

func (s *RabbitMQIntegrationSuite) TestPublisher_StoryDeletedHasNoBody() {
	cfg := s.config("deleted")
	pub, err := NewRabbitMQ(cfg, s.logger)
	s.Require().NoError(err)
	defer pub.Close()

	s.NoError(pub.Publish(s.ctx, &domain.Event{
		Action:    domain.ActionStoryDeleted,
		Username:  "alice",
		StoryID:   "gone",
		Timestamp: time.Now().UTC(),
	}))

	msg := s.consumeMessage(cfg)
	s.Require().NotNil(msg)

	var raw map[string]any
	s.Require().NoError(json.Unmarshal(msg.Body, &raw))
	s.Equal("gone", raw["storyId"])
	s.NotContains(raw, "story")
}

func (s *RabbitMQIntegrationSuite) consumeMessage(cfg Config) *amqp.Delivery {
	conn, err := amqp.Dial(s.amqpURL)
	s.Require().NoError(err)
	defer conn.Close()

	ch, err := conn.Channel()
	s.Require().NoError(err)
	defer ch.Close()

	msgs, err := ch.Consume(cfg.QueueName, "", true, false, false, false, nil)
	s.Require().NoError(err)

	select {
	case msg := <-msgs:
		return &msg
	case <-time.After(5 * time.Second):
		s.Fail("Timeout waiting for message")
		return nil
	}
}
