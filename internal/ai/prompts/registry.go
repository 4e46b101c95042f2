package prompts

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"
)

type Template struct {
	Name       PromptName
	Version    int
	SchemaName string
	System     func(Input) (string, error)
	User       func(Input) (string, error)
}

//go:embed prompts.yaml
var embeddedSpecs []byte

var (
	registryMu sync.RWMutex
	registry   = map[PromptName]Template{}
)

func init() {
	specs, err := ParseSpecs(embeddedSpecs)
	if err != nil {
		panic(err)
	}
	for _, s := range specs {
		RegisterSpec(s)
	}
}

// Register registers a compiled Template, replacing any with the same name.
func Register(t Template) {
	registryMu.Lock()
	registry[t.Name] = t
	registryMu.Unlock()
}

func Lookup(name PromptName) (Template, bool) {
	registryMu.RLock()
	t, ok := registry[name]
	registryMu.RUnlock()
	return t, ok
}

func Names() []PromptName {
	registryMu.RLock()
	out := make([]PromptName, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	registryMu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Build renders the named prompt. A placeholder without a matching input key
// is an error.
func Build(name PromptName, in Input) (Prompt, error) {
	t, ok := Lookup(name)
	if !ok {
		return Prompt{}, fmt.Errorf("unknown prompt: %s", string(name))
	}
	if t.System == nil || t.User == nil {
		return Prompt{}, fmt.Errorf("prompt %s missing system/user renderers", string(name))
	}
	system, err := t.System(in)
	if err != nil {
		return Prompt{}, fmt.Errorf("%s system render: %w", string(name), err)
	}
	user, err := t.User(in)
	if err != nil {
		return Prompt{}, fmt.Errorf("%s user render: %w", string(name), err)
	}
	return Prompt{
		Name:       string(t.Name),
		Version:    t.Version,
		SchemaName: t.SchemaName,
		System:     system,
		User:       user,
	}, nil
}
