package main

import (
	"context"
	"io"
	"os"
	"time"

	psconv "github.com/alnah/go-psconv"
)

// Environment holds injectable dependencies for testability.
// Includes I/O, time and the Ghostscript engines.
type Environment struct {
	Context context.Context
	Now     func() time.Time
	Stdout  io.Writer
	Stderr  io.Writer

	// Engine and SharedEngine replace the Ghostscript engines when set.
	Engine       psconv.Engine
	SharedEngine psconv.SharedEngine
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Context: context.Background(),
		Now:     time.Now,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}
