package domain

import "github.com/google/uuid"

// Story is one slide of the city slideshow.
type Story struct {
	ID       uuid.UUID `json:"id"`
	ImageURL string    `json:"image_url"`
}

// NewStories builds a fresh story list from photo URLs, one new identity per URL.
func NewStories(urls []string, newID func() uuid.UUID) []Story {
	if newID == nil {
		newID = uuid.New
	}
	stories := make([]Story, 0, len(urls))
	for _, u := range urls {
		stories = append(stories, Story{ID: newID(), ImageURL: u})
	}
	return stories
}
