package domain

import "time"

type User struct {
	UserID       string    `json:"id" dynamodbav:"user_id"`
	Email        string    `json:"email" dynamodbav:"email"`
	Phone        *string   `json:"phone,omitempty" dynamodbav:"phone"`
	PasswordHash string    `json:"-" dynamodbav:"password_hash"`
	FirstName    string    `json:"first_name" dynamodbav:"first_name"`
	LastName     string    `json:"last_name" dynamodbav:"last_name"`
	Profile      string    `json:"profile" dynamodbav:"profile"` // S3 key of the profile picture
	Role         string    `json:"role" dynamodbav:"role"`
	CreatedAt    time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time `json:"updated" dynamodbav:"updated_at"`
}

type CreateUserRequest struct {
	FirstName string  `json:"first_name" validate:"required"`
	LastName  string  `json:"last_name" validate:"required"`
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required,min=6,max=72"`
	Phone     *string `json:"phone"`
	Profile   string  `json:"profile"` // optional S3 key returned by the upload endpoint
}

// UpdateUserRequest is the admin edit payload. Nil fields are left untouched.
type UpdateUserRequest struct {
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Phone       *string `json:"phone"`
	Role        *string `json:"role"`
	NewPassword *string `json:"new_password"`
	Profile     *string `json:"profile"` // replaces the current picture; old asset is garbage-collected
}

// UpdateProfileRequest is the self-service profile edit payload. Changing the
// password requires the current one.
type UpdateProfileRequest struct {
	FirstName   string  `json:"first_name" validate:"required"`
	LastName    string  `json:"last_name" validate:"required"`
	OldPassword string  `json:"old_password"`
	NewPassword string  `json:"new_password"`
	Profile     *string `json:"profile"`
}
