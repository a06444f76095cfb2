package main

import (
	"errors"
	"strings"

	"github.com/charmbracelet/huh"
)

// prompter is the interactive side of the console.
type prompter interface {
	Confirm(question string) (bool, error)
	Select(title string, options []string) (string, error)
	Input(title string, secret bool) (string, error)
}

type huhPrompter struct{}

func (huhPrompter) Confirm(question string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(question).
		Affirmative("예").
		Negative("아니오").
		Value(&ok).
		Run()
	return ok, err
}

func (huhPrompter) Select(title string, options []string) (string, error) {
	if len(options) == 0 {
		return "", errors.New("선택할 항목이 없습니다")
	}
	var choice string
	err := huh.NewSelect[string]().
		Title(title).
		Options(huh.NewOptions(options...)...).
		Value(&choice).
		Run()
	return choice, err
}

func (huhPrompter) Input(title string, secret bool) (string, error) {
	var value string
	input := huh.NewInput().
		Title(title).
		Value(&value).
		Validate(func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("값을 입력해주세요")
			}
			return nil
		})
	if secret {
		input = input.EchoMode(huh.EchoModePassword)
	}
	return value, input.Run()
}
