package dto

import "github.com/spec-kit/blog-service/internal/domain"

// UserDTO is the public representation of an account. The password hash and
// google id never leave the service.
type UserDTO struct {
	ID         int64  `json:"id"`
	Username   string `json:"username,omitempty"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	PictureURL string `json:"picture_url,omitempty"`
	Role       string `json:"role"`
}

// FromUser maps a domain user to its DTO.
func FromUser(user *domain.User) UserDTO {
	return UserDTO{
		ID:         user.ID,
		Username:   user.Username,
		Name:       user.Name,
		Email:      user.Email,
		PictureURL: user.PictureURL,
		Role:       user.Role,
	}
}

// PublicUserDTO is the sanitized account view served to anonymous callers.
// Email and role are deliberately absent.
type PublicUserDTO struct {
	ID         int64  `json:"id"`
	Username   string `json:"username,omitempty"`
	Name       string `json:"name"`
	PictureURL string `json:"picture_url,omitempty"`
}

// FromUserPublic maps a domain user to its sanitized public DTO.
func FromUserPublic(user *domain.User) PublicUserDTO {
	return PublicUserDTO{
		ID:         user.ID,
		Username:   user.Username,
		Name:       user.Name,
		PictureURL: user.PictureURL,
	}
}

// AdminUserRequest payload for admin account creation and edits. On update,
// empty fields are left unchanged.
type AdminUserRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

// ProfileUpdateRequest payload for profile edits.
type ProfileUpdateRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// PasswordChangeRequest payload for password changes.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// AvatarUpdateRequest payload for avatar changes.
type AvatarUpdateRequest struct {
	PictureURL string `json:"picture_url"`
}
