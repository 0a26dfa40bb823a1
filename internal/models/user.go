package models

import "time"

// DefaultImageURL is the avatar every user starts with.
const DefaultImageURL = "/images/avatar.png"

// DefaultRole is assigned when a user is created without one.
const DefaultRole = "User"

// User represents a stored user record.
type User struct {
	ID          string    `json:"_id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	UserID      int64     `json:"userID" gorm:"column:user_id;uniqueIndex;not null"`
	Fullname    string    `json:"fullname" gorm:"type:varchar(255);not null" validate:"required"`
	Username    string    `json:"username" gorm:"type:varchar(100);index;not null" validate:"required"`
	DateOfBirth time.Time `json:"dateOfBirth" gorm:"not null" validate:"required"`
	Gender      string    `json:"gender" gorm:"type:varchar(50);not null" validate:"required"`
	Email       string    `json:"email" gorm:"type:varchar(255);not null" validate:"required"`
	Password    string    `json:"-" gorm:"type:varchar(255);not null" validate:"required"` // bcrypt hash, never serialized
	ImageURL    string    `json:"imageUrl" gorm:"column:image_url;type:varchar(255)"`
	Role        string    `json:"role" gorm:"type:varchar(50)"`
	CreatedDate time.Time `json:"created_date" gorm:"column:created_date;autoCreateTime"`
}

// TableName pins the collection name.
func (User) TableName() string {
	return "users"
}

// UserView is the client-facing shape of a User. Field order is the output
// order: identifiers first, then the remaining fields as inserted. It has no
// password field.
type UserView struct {
	ID          string    `json:"_id"`
	UserID      int64     `json:"userID"`
	Fullname    string    `json:"fullname"`
	Username    string    `json:"username"`
	DateOfBirth time.Time `json:"dateOfBirth"`
	Gender      string    `json:"gender"`
	Email       string    `json:"email"`
	ImageURL    string    `json:"imageUrl"`
	Role        string    `json:"role"`
	CreatedDate time.Time `json:"created_date"`
}

// View renders the user for output without touching the stored record.
func (u *User) View() UserView {
	return UserView{
		ID:          u.ID,
		UserID:      u.UserID,
		Fullname:    u.Fullname,
		Username:    u.Username,
		DateOfBirth: u.DateOfBirth,
		Gender:      u.Gender,
		Email:       u.Email,
		ImageURL:    u.ImageURL,
		Role:        u.Role,
		CreatedDate: u.CreatedDate,
	}
}

// Views renders a slice of users.
func Views(users []User) []UserView {
	out := make([]UserView, 0, len(users))
	for i := range users {
		out = append(out, users[i].View())
	}
	return out
}

// CreateUserRequest is the body accepted by user creation.
type CreateUserRequest struct {
	Fullname    string `json:"fullname" validate:"required"`
	Username    string `json:"username" validate:"required"`
	DateOfBirth string `json:"dateOfBirth" validate:"required"`
	Gender      string `json:"gender" validate:"required"`
	Email       string `json:"email" validate:"required"`
	Password    string `json:"password" validate:"required"`
	ImageURL    string `json:"imageUrl"`
	Role        string `json:"role"`
}

// UpdateUserRequest lists the fields an update may change. Anything else in
// the request body is ignored.
type UpdateUserRequest struct {
	Fullname    *string `json:"fullname"`
	Username    *string `json:"username"`
	DateOfBirth *string `json:"dateOfBirth"`
	Gender      *string `json:"gender"`
	Email       *string `json:"email"`
	Password    *string `json:"password"`
	ImageURL    *string `json:"imageUrl"`
	Role        *string `json:"role"`
}
