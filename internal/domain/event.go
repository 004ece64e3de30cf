package domain

import "time"

const (
	ActionStoryCreated    = "story.created"
	ActionStoryDeleted    = "story.deleted"
	ActionFavoriteAdded   = "favorite.added"
	ActionFavoriteRemoved = "favorite.removed"
)

// Event describes a change the server has confirmed.
type Event struct {
	Action    string    `json:"action"`
	Username  string    `json:"username"`
	StoryID   string    `json:"storyId"`
	Story     *Story    `json:"story,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
