package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"story_client/internal/domain"
)

type UserService struct {
	api       API
	store     CredentialStore
	publisher Publisher
	logger    *slog.Logger
}

// NewUserService wires the user operations. store and publisher may be nil.
func NewUserService(api API, store CredentialStore, publisher Publisher, logger *slog.Logger) *UserService {
	return &UserService{
		api:       api,
		store:     store,
		publisher: publisher,
		logger:    logger.With("service", "users"),
	}
}

func (s *UserService) Signup(ctx context.Context, username, password, name string) (*domain.User, error) {
	user, err := s.api.Signup(ctx, username, password, name)
	if err != nil {
		return nil, fmt.Errorf("signup %s: %w", username, err)
	}

	s.logger.Info("signed up", "username", user.Username)
	s.remember(ctx, user)
	return user, nil
}

func (s *UserService) Login(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.api.Login(ctx, username, password)
	if err != nil {
		return nil, fmt.Errorf("login %s: %w", username, err)
	}

	s.logger.Info("logged in", "username", user.Username)
	s.remember(ctx, user)
	return user, nil
}

// LoginViaStoredCredentials restores a session from a saved token. It never
// fails: any problem is logged and reported as a nil user.
func (s *UserService) LoginViaStoredCredentials(ctx context.Context, token, username string) *domain.User {
	if token == "" || username == "" {
		return nil
	}

	user, err := s.api.GetUser(ctx, token, username)
	if err != nil {
		s.logger.Warn("stored credentials rejected",
			"username", username,
			"error", err,
		)
		return nil
	}

	user.Token = token
	s.logger.Info("session restored", "username", user.Username)
	return user
}

// RestoreSession looks up remembered credentials and tries them.
func (s *UserService) RestoreSession(ctx context.Context) *domain.User {
	if s.store == nil {
		return nil
	}

	creds, err := s.store.Load(ctx)
	if err != nil {
		s.logger.Warn("failed to load stored credentials", "error", err)
		return nil
	}
	if creds == nil {
		return nil
	}

	return s.LoginViaStoredCredentials(ctx, creds.Token, creds.Username)
}

// Logout forgets the remembered session and drops the token from user.
func (s *UserService) Logout(ctx context.Context, user *domain.User) error {
	if user != nil {
		user.Token = ""
	}
	if s.store == nil {
		return nil
	}
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}

// AddFavorite marks story locally first, then tells the server. The local
// change stays even if the server call fails; the returned toggle can Revert it.
// A story that is already a favorite is not appended twice.
func (s *UserService) AddFavorite(ctx context.Context, user *domain.User, story domain.Story) (*domain.FavoriteToggle, error) {
	if !user.Authenticated() {
		return nil, domain.ErrNotAuthenticated
	}

	toggle := &domain.FavoriteToggle{
		Story:   story,
		Added:   true,
		Changed: user.MarkFavorite(story),
	}

	if err := s.api.AddFavorite(ctx, user.Token, user.Username, story.ID); err != nil {
		toggle.Err = fmt.Errorf("add favorite %s: %w", story.ID, err)
		s.logger.Warn("favorite not confirmed",
			"story_id", story.ID,
			"error", err,
		)
		return toggle, toggle.Err
	}

	toggle.Confirmed = true
	notify(ctx, s.publisher, s.logger, domain.ActionFavoriteAdded, user.Username, &story, story.ID)
	return toggle, nil
}

// RemoveFavorite is the mirror of AddFavorite.
func (s *UserService) RemoveFavorite(ctx context.Context, user *domain.User, story domain.Story) (*domain.FavoriteToggle, error) {
	if !user.Authenticated() {
		return nil, domain.ErrNotAuthenticated
	}

	toggle := &domain.FavoriteToggle{
		Story:   story,
		Changed: user.UnmarkFavorite(story.ID),
	}

	if err := s.api.RemoveFavorite(ctx, user.Token, user.Username, story.ID); err != nil {
		toggle.Err = fmt.Errorf("remove favorite %s: %w", story.ID, err)
		s.logger.Warn("unfavorite not confirmed",
			"story_id", story.ID,
			"error", err,
		)
		return toggle, toggle.Err
	}

	toggle.Confirmed = true
	notify(ctx, s.publisher, s.logger, domain.ActionFavoriteRemoved, user.Username, &story, story.ID)
	return toggle, nil
}

func (s *UserService) remember(ctx context.Context, user *domain.User) {
	if s.store == nil {
		return
	}

	creds := user.Credentials()
	creds.SavedAt = time.Now().UTC()
	if err := s.store.Save(ctx, creds); err != nil {
		s.logger.Warn("failed to save credentials",
			"username", user.Username,
			"error", err,
		)
	}
}
