package config

import (
	"fmt"
	"strings"

	"ccs/config/models"
)

// Resolve turns a user-supplied model value into a provider,model pair.
// "provider,model" is checked as given; a bare model name resolves to its
// provider when exactly one provider lists it.
func (d *Document) Resolve(value string) (models.ModelRef, error) {
	ref, hasComma, err := models.ParseModelRef(value)
	if err != nil {
		return models.ModelRef{}, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	if hasComma {
		if err := d.checkModelRef(ref); err != nil {
			return models.ModelRef{}, err
		}
		return ref, nil
	}

	model := strings.TrimSpace(value)
	if model == "" {
		return models.ModelRef{}, fmt.Errorf("%w: model name cannot be empty", ErrInvalidValue)
	}

	candidates := d.ProvidersForModel(model)
	switch len(candidates) {
	case 0:
		return models.ModelRef{}, fmt.Errorf("%w: model '%s' not found in any provider", ErrUnknownModel, model)
	case 1:
		return models.ModelRef{Provider: candidates[0], Model: model}, nil
	default:
		return models.ModelRef{}, &AmbiguousModelError{Model: model, Providers: candidates}
	}
}

// Pairs flattens every provider's models into provider,model references
func (d *Document) Pairs() []models.ModelRef {
	var refs []models.ModelRef
	for _, p := range d.Providers() {
		for _, m := range p.Models {
			refs = append(refs, models.ModelRef{Provider: p.Name, Model: m})
		}
	}
	return refs
}
