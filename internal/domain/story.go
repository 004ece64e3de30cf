package domain

import (
	"fmt"
	"net/url"
	"time"
)

type Story struct {
	ID        string    `json:"storyId"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	URL       string    `json:"url"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewStory is the user-supplied part of a story before the server assigns an ID.
type NewStory struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	URL    string `json:"url"`
}

// HostName returns the host component of the story URL.
func (s Story) HostName() (string, error) {
	u, err := url.Parse(s.URL)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrParse, s.URL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: %q is not an absolute url", ErrParse, s.URL)
	}
	return u.Host, nil
}

func (s Story) Equal(other Story) bool {
	return s.ID == other.ID
}

// StoryList is the feed. Order is insertion order, newest first.
type StoryList struct {
	Stories []Story
}

func NewStoryList(stories []Story) *StoryList {
	return &StoryList{Stories: stories}
}

func (l *StoryList) Len() int {
	return len(l.Stories)
}

func (l *StoryList) Find(storyID string) (Story, bool) {
	return findStory(l.Stories, storyID)
}

// Prepend puts story at index 0, keeping the relative order of the rest.
func (l *StoryList) Prepend(story Story) {
	l.Stories = prependStory(l.Stories, story)
}

// Remove drops every entry with the given ID and reports whether any was found.
func (l *StoryList) Remove(storyID string) bool {
	var removed bool
	l.Stories, removed = removeStory(l.Stories, storyID)
	return removed
}

func findStory(stories []Story, storyID string) (Story, bool) {
	for _, s := range stories {
		if s.ID == storyID {
			return s, true
		}
	}
	return Story{}, false
}

func prependStory(stories []Story, story Story) []Story {
	out := make([]Story, 0, len(stories)+1)
	out = append(out, story)
	return append(out, stories...)
}

func removeStory(stories []Story, storyID string) ([]Story, bool) {
	filtered := make([]Story, 0, len(stories))
	for _, s := range stories {
		if s.ID != storyID {
			filtered = append(filtered, s)
		}
	}
	return filtered, len(filtered) != len(stories)
}
