package prompts

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

// Spec is the declaration format used in prompts.yaml.
type Spec struct {
	Name       PromptName `yaml:"name"`
	Version    int        `yaml:"version"`
	SchemaName string     `yaml:"schema_name"`
	// Go templates over Input, e.g. {{.query}}.
	System string `yaml:"system"`
	User   string `yaml:"user"`
}

type specFile struct {
	Prompts []Spec `yaml:"prompts"`
}

// ParseSpecs decodes a prompts.yaml document.
func ParseSpecs(data []byte) ([]Spec, error) {
	var f specFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode prompt specs: %w", err)
	}
	if len(f.Prompts) == 0 {
		return nil, fmt.Errorf("no prompts declared")
	}
	return f.Prompts, nil
}

// MakeTemplate compiles a Spec into a Template.
func MakeTemplate(s Spec) (Template, error) {
	if strings.TrimSpace(string(s.Name)) == "" {
		return Template{}, fmt.Errorf("missing prompt name")
	}
	if s.Version <= 0 {
		return Template{}, fmt.Errorf("invalid version for %s", s.Name)
	}
	if strings.TrimSpace(s.SchemaName) == "" {
		return Template{}, fmt.Errorf("missing schema name for %s", s.Name)
	}
	if strings.TrimSpace(s.User) == "" {
		return Template{}, fmt.Errorf("missing user template for %s", s.Name)
	}
	sysT, err := template.New("system").Option("missingkey=error").Parse(s.System)
	if err != nil {
		return Template{}, fmt.Errorf("%s system template parse: %w", s.Name, err)
	}
	userT, err := template.New("user").Option("missingkey=error").Parse(s.User)
	if err != nil {
		return Template{}, fmt.Errorf("%s user template parse: %w", s.Name, err)
	}
	render := func(t *template.Template, in Input) (string, error) {
		var b bytes.Buffer
		if err := t.Execute(&b, map[string]any(in)); err != nil {
			return "", err
		}
		return strings.TrimSpace(b.String()), nil
	}
	return Template{
		Name:       s.Name,
		Version:    s.Version,
		SchemaName: strings.TrimSpace(s.SchemaName),
		System:     func(in Input) (string, error) { return render(sysT, in) },
		User:       func(in Input) (string, error) { return render(userT, in) },
	}, nil
}

// RegisterSpec compiles and registers s, panicking on an invalid declaration.
func RegisterSpec(s Spec) {
	t, err := MakeTemplate(s)
	if err != nil {
		panic(err)
	}
	Register(t)
}
