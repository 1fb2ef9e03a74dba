package command

import (
	"sort"

	ncerr "telnetd/internal/errors"
)

// Aliases maps alternate input strings to canonical command names.
// Targets are not checked against the registry; an alias whose target
// is missing resolves as an unknown command.
type Aliases struct {
	targets map[string]string
}

// NewAliases returns an empty alias table.
func NewAliases() *Aliases {
	return &Aliases{targets: make(map[string]string)}
}

// Set maps alias to target, replacing any previous mapping.
func (a *Aliases) Set(alias, target string) error {
	if alias == "" {
		return ncerr.ErrInvalidAlias
	}
	a.targets[alias] = target
	return nil
}

// Target returns the canonical name alias maps to.
func (a *Aliases) Target(alias string) (string, bool) {
	t, ok := a.targets[alias]
	return t, ok
}

// Names returns every alias, sorted.
func (a *Aliases) Names() []string {
	names := make([]string, 0, len(a.targets))
	for n := range a.targets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Resolve finds the entry for a trimmed input line.  An exact command
// name wins; otherwise the alias is substituted once and looked up.
// Alias chains are not followed.
func Resolve(reg *Registry, aliases *Aliases, line string) (Entry, bool) {
	if e, ok := reg.Lookup(line); ok {
		return e, true
	}
	if aliases == nil {
		return Entry{}, false
	}
	target, ok := aliases.Target(line)
	if !ok {
		return Entry{}, false
	}
	return reg.Lookup(target)
}
