package service

import "errors"

var (
	ErrFollowSelf        = errors.New("cannot follow self")
	ErrForbiddenRolePair = errors.New("owners may not follow visitors")
	ErrInvalidRole       = errors.New("invalid actor role")
	ErrTargetNotFound    = errors.New("target actor not found")
	ErrSurveyNotFound    = errors.New("survey not found")
	ErrOptionNotFound    = errors.New("survey option not found")
)
