package model

import "github.com/golang-jwt/jwt/v5"

// Role is the access role of a user.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleEmployee || r == RoleManager
}

// User is an account stored in MongoDB.
type User struct {
	ID           string `json:"id" bson:"_id"`
	Email        string `json:"email" bson:"email"`
	PasswordHash string `json:"-" bson:"passwordHash"`
	Role         Role   `json:"role" bson:"role"`
	Department   string `json:"department" bson:"department"`
}

// Claims are the JWT claims of an access token. Subject holds the user id, ID the token id.
type Claims struct {
	Role       Role   `json:"role"`
	Department string `json:"department"`
	jwt.RegisteredClaims
}

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID     string `json:"userId"`
	Role       Role   `json:"role"`
	Department string `json:"department"`
	TokenID    string `json:"-"`
}

// LoginRequest is the request body for login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned after successful login
type LoginResponse struct {
	AccessToken string `json:"accessToken"`
	Role        Role   `json:"role"`
	Department  string `json:"department"`
}
