package user

import "errors"

var ErrWeakPassword = errors.New("password must be at least 8 characters")
