package models

import (
	"fmt"
	"strings"
)

// Router types understood by CCR
const (
	RouterDefault     = "default"
	RouterBackground  = "background"
	RouterThink       = "think"
	RouterLongContext = "longContext"
	RouterWebSearch   = "webSearch"

	// LongContextThresholdKey is the integer Router field that only applies with longContext
	LongContextThresholdKey = "longContextThreshold"
)

// RouterTypes lists every routing slot in display order
var RouterTypes = []string{
	RouterDefault,
	RouterBackground,
	RouterThink,
	RouterLongContext,
	RouterWebSearch,
}

// IsRouterType reports whether t names a routing slot
func IsRouterType(t string) bool {
	for _, rt := range RouterTypes {
		if rt == t {
			return true
		}
	}
	return false
}

// Provider represents a single upstream API endpoint in the CCR config
type Provider struct {
	Name       string   `json:"name"`
	APIBaseURL string   `json:"api_base_url"`
	APIKey     string   `json:"api_key,omitempty"`
	Models     []string `json:"models"`
}

// HasModel reports whether the provider lists model
func (p Provider) HasModel(model string) bool {
	for _, m := range p.Models {
		if m == model {
			return true
		}
	}
	return false
}

// Router is a read-only view of the Router section
type Router struct {
	Entries              map[string]string
	LongContextThreshold int
	HasThreshold         bool
}

// Get returns the entry for a router type and whether it is set
func (r Router) Get(routerType string) (string, bool) {
	v, ok := r.Entries[routerType]
	return v, ok && v != ""
}

// IsEmpty reports whether no router entry or threshold is present
func (r Router) IsEmpty() bool {
	return len(r.Entries) == 0 && !r.HasThreshold
}

// ModelRef is a "provider,model" reference as stored in Router entries
type ModelRef struct {
	Provider string
	Model    string
}

// String renders the reference in CCR's "provider,model" form
func (r ModelRef) String() string {
	return r.Provider + "," + r.Model
}

// ParseModelRef splits a "provider,model" value on its first comma.
// ok is false when value carries no comma.
func ParseModelRef(value string) (ref ModelRef, ok bool, err error) {
	provider, model, found := strings.Cut(value, ",")
	if !found {
		return ModelRef{}, false, nil
	}
	ref = ModelRef{
		Provider: strings.TrimSpace(provider),
		Model:    strings.TrimSpace(model),
	}
	if ref.Provider == "" || ref.Model == "" {
		return ModelRef{}, true, fmt.Errorf("invalid model reference %q, expected <provider>,<model>", value)
	}
	return ref, true, nil
}
