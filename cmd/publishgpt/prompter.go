package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
)

// formPrompter asks questions with huh forms.
type formPrompter struct{}

func (formPrompter) Input(title, defaultValue string, suggestions ...string) (string, error) {
	value := defaultValue
	input := huh.NewInput().
		Title(title).
		Value(&value)
	if len(suggestions) > 0 {
		input = input.Suggestions(suggestions)
	}

	if err := huh.NewForm(huh.NewGroup(input)).Run(); err != nil {
		return "", fmt.Errorf("input failed: %w", err)
	}
	return strings.TrimSpace(value), nil
}

func (formPrompter) Int(title string) (int, error) {
	var raw string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				Validate(validateInt).
				Value(&raw),
		),
	)

	if err := form.Run(); err != nil {
		return 0, fmt.Errorf("input failed: %w", err)
	}
	return strconv.Atoi(strings.TrimSpace(raw))
}

func (formPrompter) Confirm(title string) (bool, error) {
	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Value(&ok),
		),
	)

	if err := form.Run(); err != nil {
		return false, fmt.Errorf("confirmation failed: %w", err)
	}
	return ok, nil
}

func validateInt(s string) error {
	if _, err := strconv.Atoi(strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("please enter a whole number")
	}
	return nil
}
