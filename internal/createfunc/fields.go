package createfunc

import (
	"context"
	"strings"

	"github.com/funcscaffold/funcscaffold/internal/prompt"
	"github.com/funcscaffold/funcscaffold/internal/templates"
)

// field is the common shape of a v1 binding setting and a v2 job input.
type field struct {
	Label        string
	Help         string
	DefaultValue string
	Type         templates.ValueType
	Enums        []templates.EnumValue
	Validate     func(string) error
}

func settingField(s *templates.BindingSetting) field {
	return field{
		Label:        s.Label,
		Help:         s.Help,
		DefaultValue: s.DefaultValue,
		Type:         s.ValueType,
		Enums:        s.Enums,
		Validate:     s.Validate,
	}
}

func inputField(in *templates.ParsedInput) field {
	return field{
		Label:        in.Label,
		Help:         in.Help,
		DefaultValue: in.DefaultValue,
		Type:         in.ValueType,
		Enums:        in.Enums,
		Validate:     in.Validate,
	}
}

// ask prompts for f and returns the answer as text. Booleans come back as
// "true" or "false"; check box lists as comma separated values.
func ask(ctx context.Context, p prompt.Prompter, f field) (string, error) {
	label := f.Label
	if label == "" {
		label = "Value"
	}

	switch f.Type {
	case templates.ValueEnum:
		items := make([]prompt.Item, 0, len(f.Enums))
		for _, e := range f.Enums {
			items = append(items, prompt.Item{Label: e.DisplayName, Value: e.Value})
		}
		item, err := p.Pick(ctx, prompt.PickOptions{Label: label, Items: items, DefaultValue: f.DefaultValue})
		if err != nil {
			return "", err
		}
		return item.Value, nil

	case templates.ValueBoolean:
		item, err := p.Pick(ctx, prompt.PickOptions{
			Label:        label,
			Items:        []prompt.Item{{Label: "Yes", Value: "true"}, {Label: "No", Value: "false"}},
			DefaultValue: strings.ToLower(f.DefaultValue),
		})
		if err != nil {
			return "", err
		}
		return item.Value, nil

	default:
		return p.Input(ctx, prompt.InputOptions{
			Label:        label,
			Help:         f.Help,
			DefaultValue: f.DefaultValue,
			Validate:     validationFunc(f.Validate),
		})
	}
}

// validationFunc adapts a template validator to the prompt contract.
func validationFunc(validate func(string) error) func(string) error {
	if validate == nil {
		return nil
	}
	return func(v string) error {
		if err := validate(v); err != nil {
			return &prompt.ValidationError{Message: err.Error()}
		}
		return nil
	}
}

// splitList parses a comma separated answer.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
