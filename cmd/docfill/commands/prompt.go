package commands

import (
	"context"
	"unicode/utf8"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"gitlab.com/tozd/go/errors"

	"github.com/tsawler/docfill/form"
)

// Prompter asks the user for one field value.
type Prompter interface {
	Input(ctx context.Context, field form.Field, current string) (string, error)
}

// prompter is replaced in tests.
var prompter Prompter = surveyPrompter{}

type surveyPrompter struct{}

func (surveyPrompter) Input(ctx context.Context, field form.Field, current string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", errors.WithStack(err)
	}

	var out string
	prompt := &survey.Input{
		Message: field.Label,
		Default: current,
	}
	if err := survey.AskOne(prompt, &out, survey.WithValidator(fieldValidator(field))); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return "", errors.New("interrupted")
		}
		return "", errors.Errorf("prompting %s: %w", field.Name, err)
	}
	return out, nil
}

// fieldValidator checks an answer against the field's constraints.
func fieldValidator(field form.Field) survey.Validator {
	var validators []survey.Validator
	if field.Required {
		validators = append(validators, survey.Required)
	}
	if field.MaxLength > 0 {
		limit := field.MaxLength
		validators = append(validators, func(ans interface{}) error {
			if s, ok := ans.(string); ok && utf8.RuneCountInString(s) > limit {
				return errors.Errorf("must be at most %d characters", limit)
			}
			return nil
		})
	}
	return survey.ComposeValidators(validators...)
}
