package domain

import "time"

// File is the metadata record for an uploaded object (profile picture,
// poster, or video). Object is the S3 key that catalog records store as
// their asset reference.
type File struct {
	FileID           string    `json:"id" dynamodbav:"file_id"`
	Object           string    `json:"object" dynamodbav:"object"`
	Size             int64     `json:"size" dynamodbav:"size"`
	Type             string    `json:"type" dynamodbav:"type"`
	Name             string    `json:"name" dynamodbav:"name"`
	Hash             string    `json:"hash" dynamodbav:"hash"`
	Kind             string    `json:"kind" dynamodbav:"kind"` // "profile" | "poster" | "video"
	UploadedByUserID string    `json:"user_who_uploaded_id" dynamodbav:"uploaded_by_user_id"`
	Enable           bool      `json:"enable" dynamodbav:"enable"`
	CreatedAt        time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt        time.Time `json:"updated" dynamodbav:"updated_at"`
}
