package cmd

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry stores commands by name and alias. It does not dispatch; adapters
// look commands up and invoke them with their own context.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command
	aliases  map[string]string
}

func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]Command),
		aliases:  make(map[string]string),
	}
}

// Register adds c under its name and aliases. Names and aliases are case
// insensitive and must be unique across the registry.
func (r *Registry) Register(c Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := strings.ToLower(c.Name())
	if r.taken(name) {
		return fmt.Errorf("command %q is already registered", name)
	}

	aliases := AliasesOf(c)
	for _, a := range aliases {
		a = strings.ToLower(a)
		if a == name || r.taken(a) {
			return fmt.Errorf("alias %q of %q is already taken", a, name)
		}
	}

	r.commands[name] = c
	for _, a := range aliases {
		r.aliases[strings.ToLower(a)] = name
	}
	return nil
}

// MustRegister is Register for static setup code.
func (r *Registry) MustRegister(cmds ...Command) {
	for _, c := range cmds {
		if err := r.Register(c); err != nil {
			panic(err)
		}
	}
}

func (r *Registry) taken(key string) bool {
	_, isCmd := r.commands[key]
	_, isAlias := r.aliases[key]
	return isCmd || isAlias
}

// Get returns the command registered under name, or nil.
func (r *Registry) Get(name string) Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.commands[strings.ToLower(name)]
}

// Lookup resolves a name or an alias.
func (r *Registry) Lookup(nameOrAlias string) Command {
	key := strings.ToLower(nameOrAlias)

	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.commands[key]; ok {
		return c
	}
	if name, ok := r.aliases[key]; ok {
		return r.commands[name]
	}
	return nil
}

// GetAll returns all registered commands, sorted by name.
func (r *Registry) GetAll() []Command {
	r.mu.RLock()
	list := make([]Command, 0, len(r.commands))
	for _, c := range r.commands {
		list = append(list, c)
	}
	r.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		return list[i].Name() < list[j].Name()
	})
	return list
}
