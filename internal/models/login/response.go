package models

import (
	accountmodels "github.com/beaverbuddy/server/internal/models/account"
)

type LoginResponse struct {
	Token string             `json:"token"`
	User  accountmodels.User `json:"user"`
}
