package repository

import "errors"

var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicateVote     = errors.New("user has already voted for this work")
	ErrDuplicateUsername = errors.New("username is already taken")
	ErrDuplicateTitle    = errors.New("title is already taken in this category")
)
