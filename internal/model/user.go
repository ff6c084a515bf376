// Package model defines the data structures shared across the application.
package model

import "time"

// User is a registered member account.
//
// Username and Email are unique; the database enforces this with UNIQUE
// constraints in addition to the pre-insert lookups done by the signup
// pipeline. PasswordHash is a bcrypt digest and is never rendered or
// serialized. Accounts created through GitHub sign-in carry an unusable
// digest and can only authenticate via OAuth.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
