package scheduler

import (
	"github.com/pkg/errors"
)

var (
	ErrEntityNotFound = errors.New("entity not found")
	ErrEntityExists   = errors.New("entity already exists")
	ErrEntityState    = errors.New("entity in wrong state")
	ErrInvalidNice    = errors.New("nice out of range")
)
