// Package idgen provides short, URL-safe unique ID generation backed by nanoid.
// Every entity kind has its own prefix so an id tells what it refers to.
package idgen

import (
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// Kind is an entity kind with its own id prefix.
type Kind string

const (
	Sprint     Kind = "spr-"
	Task       Kind = "tsk-"
	Tag        Kind = "tag-"
	Dependency Kind = "dep-"
)

// Alphabet defines the character set used for the random portion of the ID.
const Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Length is the number of random characters generated (excluding the prefix).
const Length = 10

// Generator produces ids. Tests substitute a deterministic one.
type Generator interface {
	New(kind Kind) (string, error)
}

// Nanoid is the production Generator.
type Nanoid struct{}

// New returns a fresh id for kind.
func (Nanoid) New(kind Kind) (string, error) {
	return GenerateWithPrefix(string(kind))
}

// GenerateWithPrefix returns a new unique ID with the given prefix.
func GenerateWithPrefix(prefix string) (string, error) {
	id, err := nanoid.Generate(Alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return prefix + id, nil
}
