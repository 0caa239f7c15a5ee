package cli

import (
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/pkg/errors"

	"alfredoptarigan/resume-screener/internal/credentials"
)

// promptKey asks for a provider key on the terminal with masked input.
func promptKey(p credentials.Provider) (string, error) {
	prompt := promptui.Prompt{
		Label: fmt.Sprintf("%s API key", providerLabel(p)),
		Mask:  '*',
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return errors.New("key must not be empty")
			}
			return nil
		},
	}
	return prompt.Run()
}

func providerLabel(p credentials.Provider) string {
	switch p {
	case credentials.Gemini:
		return "Gemini"
	case credentials.OpenAI:
		return "OpenAI"
	}
	return string(p)
}
