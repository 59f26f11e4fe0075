package dto

import (
	"time"

	domainuser "staybook/internal/domain/user"
)

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

func NewAuthResponse(u *domainuser.User, token string) AuthResponse {
	return AuthResponse{Token: token, User: MapUser(u)}
}

func MapUser(u *domainuser.User) User {
	if u == nil {
		return User{}
	}
	roles := make([]string, 0, len(u.Roles))
	for _, role := range u.Roles {
		roles = append(roles, string(role))
	}
	return User{
		ID:        string(u.ID),
		Email:     u.Email,
		Name:      u.Name,
		Roles:     roles,
		CreatedAt: u.CreatedAt,
	}
}
