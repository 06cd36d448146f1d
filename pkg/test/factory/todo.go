package factory

import (
	fab "github.com/Goldziher/fabricator"
)

// NewTodo builds a populated instance of T, overriding fields with any
// custom data supplied.
func NewTodo[T any](customData ...map[string]any) T {
	instance := fab.New(*new(T))

	return instance.Build(customData...)
}
