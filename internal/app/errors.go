package app

import "errors"

var (
	// ErrDuplicateUser indicates a registration with an already-taken username.
	ErrDuplicateUser = errors.New("username already exists")
	// ErrInvalidCredentials covers both unknown users and wrong passwords;
	// callers must not be able to tell which one failed.
	ErrInvalidCredentials = errors.New("invalid username or password")
)
