package entity

import "errors"

var (
	ErrLeadNotFound  = errors.New("lead not found")
	ErrAdminNotFound = errors.New("admin user not found")
	ErrUsernameTaken = errors.New("username already exists")
)
