package domain

import "time"

// HistoryEntry records that a user watched a movie. One entry per
// (user, movie); re-watching refreshes WatchedAt.
type HistoryEntry struct {
	HistoryID string    `json:"id" dynamodbav:"history_id"`
	UserID    string    `json:"user_id" dynamodbav:"user_id"`
	MovieID   string    `json:"movie_id" dynamodbav:"movie_id"`
	WatchedAt time.Time `json:"viewed_at" dynamodbav:"watched_at"`
}

// HistoryView joins an entry with the movie fields the history screen shows.
type HistoryView struct {
	HistoryEntry
	Title  string `json:"title"`
	Poster string `json:"poster"`
}
