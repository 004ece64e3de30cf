package domain

import "time"

type User struct {
	Username   string
	Name       string
	CreatedAt  time.Time
	Favorites  []Story
	OwnStories []Story
	Token      string
}

// Authenticated reports whether the user carries a login token.
func (u *User) Authenticated() bool {
	return u != nil && u.Token != ""
}

func (u *User) IsFavorite(story Story) bool {
	_, ok := findStory(u.Favorites, story.ID)
	return ok
}

func (u *User) IsOwnStory(story Story) bool {
	_, ok := findStory(u.OwnStories, story.ID)
	return ok
}

// MarkFavorite appends story to favorites unless it is already there.
func (u *User) MarkFavorite(story Story) bool {
	if u.IsFavorite(story) {
		return false
	}
	u.Favorites = append(u.Favorites, story)
	return true
}

func (u *User) UnmarkFavorite(storyID string) bool {
	var removed bool
	u.Favorites, removed = removeStory(u.Favorites, storyID)
	return removed
}

func (u *User) PrependOwnStory(story Story) {
	u.OwnStories = prependStory(u.OwnStories, story)
}

// ForgetStory removes storyID from own stories and favorites independently.
func (u *User) ForgetStory(storyID string) {
	u.OwnStories, _ = removeStory(u.OwnStories, storyID)
	u.Favorites, _ = removeStory(u.Favorites, storyID)
}

func (u *User) Credentials() Credentials {
	return Credentials{
		Username: u.Username,
		Token:    u.Token,
	}
}

type Credentials struct {
	Username string    `yaml:"username" db:"username"`
	Token    string    `yaml:"token" db:"token"`
	SavedAt  time.Time `yaml:"saved_at" db:"saved_at"`
}

// FavoriteToggle is the outcome of an optimistic favorite change.
// Changed is false when the local collection already had the desired state.
// Confirmed is false when the server call failed; Err holds the failure.
type FavoriteToggle struct {
	Story     Story
	Added     bool
	Changed   bool
	Confirmed bool
	Err       error
}

// Revert undoes the local part of the toggle.
func (t *FavoriteToggle) Revert(u *User) {
	if t == nil || !t.Changed {
		return
	}
	if t.Added {
		u.UnmarkFavorite(t.Story.ID)
		return
	}
	u.MarkFavorite(t.Story)
}
