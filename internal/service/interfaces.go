package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"story_client/internal/domain"
)

type API interface {
	ListStories(ctx context.Context) ([]domain.Story, error)
	CreateStory(ctx context.Context, token string, story domain.NewStory) (*domain.Story, error)
	DeleteStory(ctx context.Context, token, storyID string) error
	Signup(ctx context.Context, username, password, name string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*domain.User, error)
	GetUser(ctx context.Context, token, username string) (*domain.User, error)
	AddFavorite(ctx context.Context, token, username, storyID string) error
	RemoveFavorite(ctx context.Context, token, username, storyID string) error
}

// CredentialStore keeps the single remembered session.
// Load returns nil, nil when nothing is stored.
type CredentialStore interface {
	Save(ctx context.Context, creds domain.Credentials) error
	Load(ctx context.Context) (*domain.Credentials, error)
	Clear(ctx context.Context) error
}

type Publisher interface {
	Publish(ctx context.Context, event *domain.Event) error
	Close() error
}
