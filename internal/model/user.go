package model

import "time"

// User is the signed-in identity held by the session provider.
type User struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Avatar     string    `json:"avatar,omitempty"`
	Role       string    `json:"role"`
	Title      string    `json:"title,omitempty"`
	Department string    `json:"department,omitempty"`
	Bio        string    `json:"bio,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Person returns the denormalized author/assignee copy of u.
func (u User) Person() Person {
	return Person{ID: u.ID, Name: u.Name, Avatar: u.Avatar}
}

// UserPatch holds a partial profile update.
type UserPatch struct {
	Name       *string
	Email      *string
	Avatar     *string
	Title      *string
	Department *string
	Bio        *string
}
