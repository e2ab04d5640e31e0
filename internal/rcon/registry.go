package rcon

import (
	"fmt"
	"sort"
	"sync"
)

// Factory builds a fresh single-use client for one probe attempt.
type Factory func(cfg Config) Client

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register makes a transport available under the given name. Transport
// packages call this from init; callers select a transport by name at
// configuration time.
func Register(transport string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[transport] = f
}

// NewFactory returns the factory for the named transport. An
// unrecognized transport is a configuration error, never a runtime
// protocol error.
func NewFactory(transport string) (Factory, error) {
	mu.RLock()
	defer mu.RUnlock()
	f, ok := factories[transport]
	if !ok {
		return nil, fmt.Errorf("rcon: unknown transport %q (supported: %v)", transport, transportNames())
	}
	return f, nil
}

func transportNames() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
