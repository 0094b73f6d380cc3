package database

import "errors"

var (
	ErrNotFound        = errors.New("document not found")
	ErrDuplicateEmail  = errors.New("email already registered")
	ErrAlreadyLiked    = errors.New("already liked")
	ErrCommentNotFound = errors.New("comment not found")
)
