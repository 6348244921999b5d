package services

import "errors"

// ErrInvalidCredentials is returned for every failed login, whether the
// email is unknown or the password is wrong. Callers must not be able to
// tell the two apart.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrEmailTaken is returned when an email address is already registered.
var ErrEmailTaken = errors.New("email already registered")
