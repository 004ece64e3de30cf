package service

import (
	"context"
	"log/slog"
	"time"

	"story_client/internal/domain"
)

// notify publishes a confirmed change. Publishing is best effort: the API call
// already succeeded, so a failure here is only logged.
func notify(ctx context.Context, publisher Publisher, logger *slog.Logger, action, username string, story *domain.Story, storyID string) {
	if publisher == nil {
		return
	}

	event := &domain.Event{
		Action:    action,
		Username:  username,
		StoryID:   storyID,
		Story:     story,
		Timestamp: time.Now().UTC(),
	}

	if err := publisher.Publish(ctx, event); err != nil {
		logger.Warn("failed to publish event",
			"action", action,
			"story_id", storyID,
			"error", err,
		)
	}
}
