package db

import (
	"context"
	"errors"

	"github.com/kailas-cloud/furnidex/internal/domain"
)

var (
	// ErrKeyNotFound is returned by Get for a missing key.
	ErrKeyNotFound = errors.New("db: key not found")
	// ErrIndexExists is returned by CreateIndex when the product index is already there.
	ErrIndexExists = errors.New("db: index already exists")
	// ErrIndexNotFound marks a search against an index that was never created.
	ErrIndexNotFound = errors.New("db: index not found")
)

// Commands reported in Error.Op.
const (
	OpCreateIndex = "FT.CREATE"
	OpIndexInfo   = "FT.INFO"
	OpSearch      = "FT.SEARCH"
	OpHSet        = "HSET"
	OpHGetAll     = "HGETALL"
	OpHMGet       = "HMGET"
	OpHIncrBy     = "HINCRBY"
	OpExpire      = "EXPIRE"
	OpScan        = "SCAN"
	OpGet         = "GET"
	OpSet         = "SET"
)

// Error wraps a failed Redis command with its name. Reply is set when the
// server answered with an error; otherwise the command never got an answer.
type Error struct {
	Op    string
	Err   error
	Reply bool
}

func (e *Error) Error() string { return "redis " + e.Op + ": " + e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// Is matches domain.ErrUpstreamUnavailable when the store could not be
// reached or the product index does not exist yet.
func (e *Error) Is(target error) bool {
	return target == domain.ErrUpstreamUnavailable && e.Unavailable()
}

// Unavailable reports whether the failure means the store cannot serve
// queries, as opposed to rejecting this one command.
func (e *Error) Unavailable() bool {
	if errors.Is(e.Err, context.Canceled) {
		return false
	}
	return !e.Reply || errors.Is(e.Err, ErrIndexNotFound)
}
