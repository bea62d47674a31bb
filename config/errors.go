package config

import (
	"errors"
	"fmt"
	"strings"
)

// Errors returned by Store and Document. Callers match them with errors.Is;
// the wrapped message carries the offending names.
var (
	ErrConfigNotFound      = errors.New("config file not found")
	ErrConfigParse         = errors.New("invalid config file")
	ErrWrite               = errors.New("failed to write config file")
	ErrInvalidRouterType   = errors.New("invalid router type")
	ErrUnknownProvider     = errors.New("unknown provider")
	ErrUnknownModel        = errors.New("unknown model")
	ErrAmbiguousModel      = errors.New("ambiguous model")
	ErrCannotDeleteDefault = errors.New("the default router cannot be deleted")
	ErrNotFound            = errors.New("not found")
	ErrMissingPrerequisite = errors.New("missing prerequisite")
	ErrDuplicateProvider   = errors.New("provider already exists")
	ErrDuplicateModel      = errors.New("model already exists")
	ErrInvalidValue        = errors.New("invalid value")
)

// AmbiguousModelError reports a bare model name listed by several providers
type AmbiguousModelError struct {
	Model     string
	Providers []string
}

func (e *AmbiguousModelError) Error() string {
	return fmt.Sprintf("%v: model '%s' found in multiple providers: %s",
		ErrAmbiguousModel, e.Model, strings.Join(e.Providers, ", "))
}

func (e *AmbiguousModelError) Unwrap() error {
	return ErrAmbiguousModel
}
