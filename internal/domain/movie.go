package domain

import "time"

type Movie struct {
	MovieID       string    `json:"id" dynamodbav:"movie_id"`
	Title         string    `json:"title" dynamodbav:"title"`
	Description   string    `json:"description" dynamodbav:"description"`
	Category      string    `json:"category" dynamodbav:"category"`
	Poster        string    `json:"poster" dynamodbav:"poster"` // S3 key, may be empty
	Video         string    `json:"video" dynamodbav:"video"`   // S3 key, may be empty
	AverageRating float64   `json:"average_rating" dynamodbav:"average_rating"`
	CreatedAt     time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt     time.Time `json:"updated" dynamodbav:"updated_at"`
}

type CreateMovieRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Category    string `json:"category" validate:"required"`
	Poster      string `json:"poster"`
	Video       string `json:"video"`
}

// UpdateMovieRequest carries partial edits; replacing Poster or Video
// schedules deletion of the previous asset after the record commits.
type UpdateMovieRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Poster      *string `json:"poster"`
	Video       *string `json:"video"`
}
