package domain

import "time"

type Comment struct {
	CommentID string    `json:"id" dynamodbav:"comment_id"`
	MovieID   string    `json:"movie_id" dynamodbav:"movie_id"`
	UserID    string    `json:"user_id" dynamodbav:"user_id"`
	Text      string    `json:"comment" dynamodbav:"text"`
	Rating    int       `json:"rating" dynamodbav:"rating"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
}

type CreateCommentRequest struct {
	MovieID string `json:"movie_id" validate:"required"`
	Text    string `json:"comment" validate:"required"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
}

// CommentView is a comment enriched with its author, as the detail screen
// renders it.
type CommentView struct {
	Comment
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Profile   string `json:"profilePicture"`
}
