package handler

import "github.com/simplekeytime/licensing-system/internal/core/ports"

type registerUserRequest struct {
	AppID    string `json:"app_id"   validate:"required"`
	Username string `json:"username" validate:"required,min=3,max=32"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Nickname string `json:"nickname"`
}

type userLoginRequest struct {
	AppID    string `json:"app_id"   validate:"required"`
	Login    string `json:"login"    validate:"required"` // username or email
	Password string `json:"password" validate:"required"`
}

// userLookupRequest addresses one project user. DevID is required on the
// guarded operations only; identifiers resolve in order id > username >
// uid > email.
type userLookupRequest struct {
	AppID    string `json:"app_id" validate:"required"`
	DevID    string `json:"dev_id"`
	ID       int64  `json:"id"`
	Username string `json:"username"`
	UID      string `json:"uid"`
	Email    string `json:"email"`
}

type userResetPasswordRequest struct {
	Token       string `json:"token"        validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

type registrationStateResponse struct {
	State string `json:"state"`
}

func (r userLookupRequest) identifier() ports.UserIdentifier {
	return ports.UserIdentifier{
		ID:       r.ID,
		Username: r.Username,
		UID:      r.UID,
		Email:    r.Email,
	}
}

func (r userLookupRequest) toGuarded() ports.GuardedUserInput {
	return ports.GuardedUserInput{
		AppID:      r.AppID,
		DevID:      r.DevID,
		Identifier: r.identifier(),
	}
}
