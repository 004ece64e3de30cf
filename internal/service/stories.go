package service

import (
	"context"
	"fmt"
	"log/slog"

	"story_client/internal/domain"
)

type StoryService struct {
	api       API
	publisher Publisher
	logger    *slog.Logger
}

func NewStoryService(api API, publisher Publisher, logger *slog.Logger) *StoryService {
	return &StoryService{
		api:       api,
		publisher: publisher,
		logger:    logger.With("service", "stories"),
	}
}

// GetStories fetches the feed and wraps it in a new list, keeping server order.
func (s *StoryService) GetStories(ctx context.Context) (*domain.StoryList, error) {
	stories, err := s.api.ListStories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stories: %w", err)
	}

	s.logger.Debug("loaded feed", "count", len(stories))
	return domain.NewStoryList(stories), nil
}

// AddStory creates a story on the server, then puts it first in both the list
// and the user's own stories. Nothing is touched locally if the server refuses.
func (s *StoryService) AddStory(ctx context.Context, list *domain.StoryList, user *domain.User, story domain.NewStory) (*domain.Story, error) {
	if !user.Authenticated() {
		return nil, domain.ErrNotAuthenticated
	}

	created, err := s.api.CreateStory(ctx, user.Token, story)
	if err != nil {
		return nil, fmt.Errorf("create story: %w", err)
	}

	if list != nil {
		list.Prepend(*created)
	}
	user.PrependOwnStory(*created)

	s.logger.Info("story created",
		"story_id", created.ID,
		"username", user.Username,
	)
	notify(ctx, s.publisher, s.logger, domain.ActionStoryCreated, user.Username, created, created.ID)

	return created, nil
}

// RemoveStory deletes a story on the server, then filters it out of the list,
// the user's own stories and favorites independently.
func (s *StoryService) RemoveStory(ctx context.Context, list *domain.StoryList, user *domain.User, storyID string) error {
	if !user.Authenticated() {
		return domain.ErrNotAuthenticated
	}

	if err := s.api.DeleteStory(ctx, user.Token, storyID); err != nil {
		return fmt.Errorf("delete story %s: %w", storyID, err)
	}

	if list != nil {
		list.Remove(storyID)
	}
	user.ForgetStory(storyID)

	s.logger.Info("story removed",
		"story_id", storyID,
		"username", user.Username,
	)
	notify(ctx, s.publisher, s.logger, domain.ActionStoryDeleted, user.Username, nil, storyID)

	return nil
}
