package server

import (
	"github.com/eternalApril/moondb/internal/reply"
	"github.com/eternalApril/moondb/internal/storage"
)

// cmdContext is everything a handler sees: the selected database, the session and the arguments after the name
type cmdContext struct {
	engine  *Engine
	session *Session
	db      *storage.DB
	args    []string
}

type command interface {
	execute(ctx *cmdContext) reply.Value
}

type commandFunc func(ctx *cmdContext) reply.Value

func (c commandFunc) execute(ctx *cmdContext) reply.Value {
	return c(ctx)
}

// HandlerFunc is a command implemented outside the package
type HandlerFunc func(session *Session, args []string) reply.Value
