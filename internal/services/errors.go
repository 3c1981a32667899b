package services

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrForbidden     = errors.New("forbidden")
	ErrConflict      = errors.New("conflict")
	ErrSelfFollow    = errors.New("cannot follow yourself")
	ErrPollClosed    = errors.New("poll is closed")
	ErrInvalidOption = errors.New("invalid poll option")
	ErrNotPoll       = errors.New("widget is not a poll")
	ErrInvalidInput  = errors.New("invalid input")
)
