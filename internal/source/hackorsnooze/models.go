package hackorsnooze

import (
	"fmt"
	"time"

	"story_client/internal/domain"
)

type storyRecord struct {
	StoryID   string    `json:"storyId"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	URL       string    `json:"url"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

type userRecord struct {
	Username  string        `json:"username"`
	Name      string        `json:"name"`
	CreatedAt time.Time     `json:"createdAt"`
	Favorites []storyRecord `json:"favorites"`
	Stories   []storyRecord `json:"stories"`
}

type storiesResponse struct {
	Stories *[]storyRecord `json:"stories"`
}

type storyResponse struct {
	Story *storyRecord `json:"story"`
}

type userResponse struct {
	User  *userRecord `json:"user"`
	Token string      `json:"token"`
}

type errorResponse struct {
	Error struct {
		Status  int    `json:"status"`
		Title   string `json:"title"`
		Message string `json:"message"`
	} `json:"error"`
}

type tokenRequest struct {
	Token string `json:"token"`
}

type createStoryRequest struct {
	Token string          `json:"token"`
	Story domain.NewStory `json:"story"`
}

type credentialsRequest struct {
	User credentialsPayload `json:"user"`
}

type credentialsPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %w: %s", domain.ErrMalformedResponse, domain.ErrServer, fmt.Sprintf(format, args...))
}

func (r *storyRecord) validate() error {
	switch {
	case r.StoryID == "":
		return malformed("story without storyId")
	case r.Title == "":
		return malformed("story %s without title", r.StoryID)
	case r.Author == "":
		return malformed("story %s without author", r.StoryID)
	case r.URL == "":
		return malformed("story %s without url", r.StoryID)
	case r.Username == "":
		return malformed("story %s without username", r.StoryID)
	case r.CreatedAt.IsZero():
		return malformed("story %s without createdAt", r.StoryID)
	}
	return nil
}

func (r *storyRecord) toDomain() domain.Story {
	return domain.Story{
		ID:        r.StoryID,
		Title:     r.Title,
		Author:    r.Author,
		URL:       r.URL,
		Username:  r.Username,
		CreatedAt: r.CreatedAt,
	}
}

func transformStories(records []storyRecord) ([]domain.Story, error) {
	stories := make([]domain.Story, 0, len(records))
	for i := range records {
		if err := records[i].validate(); err != nil {
			return nil, err
		}
		stories = append(stories, records[i].toDomain())
	}
	return stories, nil
}

func (r *userRecord) toDomain(token string) (*domain.User, error) {
	if r.Username == "" {
		return nil, malformed("user without username")
	}

	favorites, err := transformStories(r.Favorites)
	if err != nil {
		return nil, fmt.Errorf("favorites: %w", err)
	}
	own, err := transformStories(r.Stories)
	if err != nil {
		return nil, fmt.Errorf("stories: %w", err)
	}

	return &domain.User{
		Username:   r.Username,
		Name:       r.Name,
		CreatedAt:  r.CreatedAt,
		Favorites:  favorites,
		OwnStories: own,
		Token:      token,
	}, nil
}
