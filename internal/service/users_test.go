package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"story_client/internal/domain"
	"story_client/internal/service/mocks"
)

type UserServiceTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller

	api       *mocks.MockAPI
	store     *mocks.MockCredentialStore
	publisher *mocks.MockPublisher

	service *UserService
	logger  *slog.Logger
}

func (s *UserServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())

	s.api = mocks.NewMockAPI(s.ctrl)
	s.store = mocks.NewMockCredentialStore(s.ctrl)
	s.publisher = mocks.NewMockPublisher(s.ctrl)

	s.logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	s.service = NewUserService(s.api, s.store, s.publisher, s.logger)
}

func (s *UserServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}

func (s *UserServiceTestSuite) TestSignup_SavesCredentials() {
	ctx := context.Background()
	user := testUser()
	user.OwnStories = []domain.Story{testStory("mine")}

	s.api.EXPECT().Signup(ctx, "alice", "pw", "Alice").Return(user, nil)
	s.store.EXPECT().Save(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, creds domain.Credentials) error {
			s.Equal("alice", creds.Username)
			s.Equal("tok", creds.Token)
			s.False(creds.SavedAt.IsZero())
			return nil
		},
	)

	got, err := s.service.Signup(ctx, "alice", "pw", "Alice")

	s.NoError(err)
	s.Equal(user, got)
	s.Len(got.OwnStories, 1)
}

func (s *UserServiceTestSuite) TestSignup_DuplicateUsername() {
	ctx := context.Background()

	s.api.EXPECT().Signup(ctx, "alice", "pw", "Alice").Return(nil, &domain.APIError{Status: 409, Message: "username taken"})

	got, err := s.service.Signup(ctx, "alice", "pw", "Alice")

	s.Nil(got)
	s.ErrorIs(err, domain.ErrValidation)
}

func (s *UserServiceTestSuite) TestLogin_BadCredentials() {
	ctx := context.Background()

	s.api.EXPECT().Login(ctx, "alice", "wrong").Return(nil, &domain.APIError{Status: 401})

	got, err := s.service.Login(ctx, "alice", "wrong")

	s.Nil(got)
	s.ErrorIs(err, domain.ErrAuth)
}

func (s *UserServiceTestSuite) TestLogin_StoreFailureIsNotFatal() {
	ctx := context.Background()
	user := testUser()

	s.api.EXPECT().Login(ctx, "alice", "pw").Return(user, nil)
	s.store.EXPECT().Save(ctx, gomock.Any()).Return(errors.New("disk full"))

	got, err := s.service.Login(ctx, "alice", "pw")

	s.NoError(err)
	s.Equal("tok", got.Token)
}

func (s *UserServiceTestSuite) TestLoginViaStoredCredentials_KeepsToken() {
	ctx := context.Background()

	s.api.EXPECT().GetUser(ctx, "stored", "alice").Return(&domain.User{Username: "alice"}, nil)

	got := s.service.LoginViaStoredCredentials(ctx, "stored", "alice")

	s.Require().NotNil(got)
	s.Equal("stored", got.Token)
}

func (s *UserServiceTestSuite) TestLoginViaStoredCredentials_SwallowsErrors() {
	ctx := context.Background()

	s.api.EXPECT().GetUser(ctx, "invalid", "alice").Return(nil, &domain.APIError{Status: 401})

	s.NotPanics(func() {
		s.Nil(s.service.LoginViaStoredCredentials(ctx, "invalid", "alice"))
	})
}

func (s *UserServiceTestSuite) TestLoginViaStoredCredentials_EmptyInput() {
	s.Nil(s.service.LoginViaStoredCredentials(context.Background(), "", "alice"))
	s.Nil(s.service.LoginViaStoredCredentials(context.Background(), "tok", ""))
}

func (s *UserServiceTestSuite) TestRestoreSession() {
	ctx := context.Background()

	s.store.EXPECT().Load(ctx).Return(&domain.Credentials{Username: "alice", Token: "tok"}, nil)
	s.api.EXPECT().GetUser(ctx, "tok", "alice").Return(&domain.User{Username: "alice"}, nil)

	got := s.service.RestoreSession(ctx)

	s.Require().NotNil(got)
	s.Equal("alice", got.Username)
	s.Equal("tok", got.Token)
}

func (s *UserServiceTestSuite) TestRestoreSession_NothingStored() {
	ctx := context.Background()

	s.store.EXPECT().Load(ctx).Return(nil, nil)

	s.Nil(s.service.RestoreSession(ctx))
}

func (s *UserServiceTestSuite) TestRestoreSession_NoStore() {
	service := NewUserService(s.api, nil, nil, s.logger)

	s.Nil(service.RestoreSession(context.Background()))
}

func (s *UserServiceTestSuite) TestLogout() {
	ctx := context.Background()
	user := testUser()

	s.store.EXPECT().Clear(ctx).Return(nil)

	s.NoError(s.service.Logout(ctx, user))
	s.False(user.Authenticated())
}

func (s *UserServiceTestSuite) TestAddFavorite_Confirmed() {
	ctx := context.Background()
	user := testUser()
	story := testStory("s1")

	s.api.EXPECT().AddFavorite(ctx, "tok", "alice", "s1").Return(nil)
	s.publisher.EXPECT().Publish(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, event *domain.Event) error {
			s.Equal(domain.ActionFavoriteAdded, event.Action)
			return nil
		},
	)

	toggle, err := s.service.AddFavorite(ctx, user, story)

	s.NoError(err)
	s.True(toggle.Confirmed)
	s.True(toggle.Changed)
	s.True(user.IsFavorite(story))
	s.True(user.IsFavorite(story))
}

func (s *UserServiceTestSuite) TestAddFavorite_RemoteFailureKeepsLocalChange() {
	ctx := context.Background()
	user := testUser()
	story := testStory("s1")

	s.api.EXPECT().AddFavorite(ctx, "tok", "alice", "s1").Return(domain.ErrNetwork)

	toggle, err := s.service.AddFavorite(ctx, user, story)

	s.ErrorIs(err, domain.ErrNetwork)
	s.Require().NotNil(toggle)
	s.False(toggle.Confirmed)
	s.ErrorIs(toggle.Err, domain.ErrNetwork)
	s.True(user.IsFavorite(story))

	toggle.Revert(user)
	s.False(user.IsFavorite(story))
}

func (s *UserServiceTestSuite) TestAddFavorite_AlreadyFavorite() {
	ctx := context.Background()
	user := testUser()
	story := testStory("s1")
	user.Favorites = []domain.Story{story}

	s.api.EXPECT().AddFavorite(ctx, "tok", "alice", "s1").Return(errors.New("boom"))

	toggle, err := s.service.AddFavorite(ctx, user, story)

	s.Error(err)
	s.False(toggle.Changed)

	toggle.Revert(user)
	s.True(user.IsFavorite(story))
	s.Len(user.Favorites, 1)
}

func (s *UserServiceTestSuite) TestRemoveFavorite_RemoteFailureKeepsLocalChange() {
	ctx := context.Background()
	user := testUser()
	story := testStory("s1")
	user.Favorites = []domain.Story{testStory("s0"), story}

	s.api.EXPECT().RemoveFavorite(ctx, "tok", "alice", "s1").Return(&domain.APIError{Status: 500})

	toggle, err := s.service.RemoveFavorite(ctx, user, story)

	s.ErrorIs(err, domain.ErrServer)
	s.False(toggle.Confirmed)
	s.True(toggle.Changed)
	s.False(user.IsFavorite(story))
	s.Equal([]string{"s0"}, ids(user.Favorites))

	toggle.Revert(user)
	s.True(user.IsFavorite(story))
}

func (s *UserServiceTestSuite) TestRemoveFavorite_Confirmed() {
	ctx := context.Background()
	user := testUser()
	story := testStory("s1")
	user.Favorites = []domain.Story{story}

	s.api.EXPECT().RemoveFavorite(ctx, "tok", "alice", "s1").Return(nil)
	s.publisher.EXPECT().Publish(ctx, gomock.Any()).Return(nil)

	toggle, err := s.service.RemoveFavorite(ctx, user, story)

	s.NoError(err)
	s.True(toggle.Confirmed)
	s.False(user.IsFavorite(story))
}

func (s *UserServiceTestSuite) TestFavorites_RequireToken() {
	user := testUser()
	user.Token = ""

	_, err := s.service.AddFavorite(context.Background(), user, testStory("s1"))
	s.ErrorIs(err, domain.ErrNotAuthenticated)

	_, err = s.service.RemoveFavorite(context.Background(), user, testStory("s1"))
	s.ErrorIs(err, domain.ErrNotAuthenticated)
	s.Empty(user.Favorites)
}
