package credentials

import (
	"strings"

	"github.com/pkg/errors"
)

// Provider names an upstream model service that needs an API key.
type Provider string

const (
	Gemini Provider = "gemini"
	OpenAI Provider = "openai"
)

// Providers lists every provider a screening needs, in resolution order.
var Providers = []Provider{Gemini, OpenAI}

// SessionKey is the key under which a provider's API key is cached in a
// server-side session.
func (p Provider) SessionKey() string {
	return string(p) + "_api_key"
}

// Source records where a resolved key came from.
type Source string

const (
	SourceConfig  Source = "config"
	SourceSession Source = "session"
	SourcePrompt  Source = "prompt"
)

var ErrMissing = errors.New("api key not provided")

// Credentials holds the keys for one screening. It is read-only once resolved.
type Credentials struct {
	GeminiKey string
	OpenAIKey string
}

func (c Credentials) Key(p Provider) string {
	switch p {
	case Gemini:
		return c.GeminiKey
	case OpenAI:
		return c.OpenAIKey
	}
	return ""
}

// Session is the per-user cache consulted after the configured value.
type Session map[Provider]string

// PromptFunc asks an operator for a key. Nil means no prompt is available.
type PromptFunc func(p Provider) (string, error)

// Resolver applies the precedence configured value, then session value, then prompt.
type Resolver struct {
	configured map[Provider]string
	prompt     PromptFunc
}

func NewResolver(geminiKey, openAIKey string, prompt PromptFunc) *Resolver {
	return &Resolver{
		configured: map[Provider]string{
			Gemini: strings.TrimSpace(geminiKey),
			OpenAI: strings.TrimSpace(openAIKey),
		},
		prompt: prompt,
	}
}

// Lookup resolves a single provider key. A prompted key is written back to
// session so later lookups in the same session do not ask again.
func (r *Resolver) Lookup(p Provider, session Session) (string, Source, error) {
	if key := r.configured[p]; key != "" {
		return key, SourceConfig, nil
	}

	if session != nil {
		if key := strings.TrimSpace(session[p]); key != "" {
			return key, SourceSession, nil
		}
	}

	if r.prompt == nil {
		return "", "", errors.Wrapf(ErrMissing, "%s", p)
	}

	key, err := r.prompt(p)
	if err != nil {
		return "", "", errors.Wrapf(err, "prompt for %s api key", p)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", "", errors.Wrapf(ErrMissing, "%s", p)
	}

	if session != nil {
		session[p] = key
	}
	return key, SourcePrompt, nil
}

// Resolve looks up the given providers, or every provider when none are
// named, and fails on the first missing key.
func (r *Resolver) Resolve(session Session, providers ...Provider) (Credentials, error) {
	if len(providers) == 0 {
		providers = Providers
	}

	var creds Credentials
	for _, p := range providers {
		key, _, err := r.Lookup(p, session)
		if err != nil {
			return Credentials{}, err
		}
		switch p {
		case Gemini:
			creds.GeminiKey = key
		case OpenAI:
			creds.OpenAIKey = key
		}
	}
	return creds, nil
}

// Configured reports whether p has a key that needs no session or prompt.
func (r *Resolver) Configured(p Provider) bool {
	return r.configured[p] != ""
}
