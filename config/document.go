package config

import (
	"bytes"
	"fmt"

	"ccs/config/models"
	"ccs/config/validation"
	"ccs/internal/utils"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

const (
	providersKey = "Providers"
	routerKey    = "Router"
)

// Width 0 puts every array element on its own line
var prettyOptions = &pretty.Options{Width: 0, Indent: "  "}

// Document is a CCR config held as raw JSON. Reads go through gjson and
// edits through sjson so that fields ccs does not manage stay untouched.
type Document struct {
	original []byte
	raw      []byte
}

// ParseDocument validates data as a CCR config document
func ParseDocument(data []byte) (*Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: file is empty", ErrConfigParse)
	}
	if !gjson.ValidBytes(trimmed) {
		return nil, fmt.Errorf("%w: malformed JSON", ErrConfigParse)
	}

	root := gjson.ParseBytes(trimmed)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: top-level value must be an object", ErrConfigParse)
	}
	if p := root.Get(providersKey); p.Exists() && !p.IsArray() {
		return nil, fmt.Errorf("%w: %s must be an array", ErrConfigParse, providersKey)
	}
	if r := root.Get(routerKey); r.Exists() && !r.IsObject() {
		return nil, fmt.Errorf("%w: %s must be an object", ErrConfigParse, routerKey)
	}

	raw := append([]byte(nil), trimmed...)
	return &Document{original: raw, raw: append([]byte(nil), raw...)}, nil
}

// Bytes returns the document re-indented with two spaces
func (d *Document) Bytes() []byte {
	return pretty.PrettyOptions(d.raw, prettyOptions)
}

// Changed reports whether any edit was applied since parsing
func (d *Document) Changed() bool {
	return !bytes.Equal(d.original, d.raw)
}

// Providers returns the providers in file order
func (d *Document) Providers() []models.Provider {
	var out []models.Provider
	gjson.GetBytes(d.raw, providersKey).ForEach(func(_, v gjson.Result) bool {
		out = append(out, providerFrom(v))
		return true
	})
	return out
}

// ModelsByProvider maps each provider name to its model list
func (d *Document) ModelsByProvider() map[string][]string {
	out := make(map[string][]string)
	for _, p := range d.Providers() {
		out[p.Name] = p.Models
	}
	return out
}

// ProvidersForModel returns the names of providers listing model, in file order
func (d *Document) ProvidersForModel(model string) []string {
	var names []string
	for _, p := range d.Providers() {
		if p.HasModel(model) {
			names = append(names, p.Name)
		}
	}
	return names
}

// Provider looks up a provider by name
func (d *Document) Provider(name string) (models.Provider, bool) {
	idx := d.providerIndex(name)
	if idx < 0 {
		return models.Provider{}, false
	}
	return providerFrom(gjson.GetBytes(d.raw, fmt.Sprintf("%s.%d", providersKey, idx))), true
}

// Router returns a snapshot of the Router section
func (d *Document) Router() models.Router {
	r := models.Router{Entries: make(map[string]string)}
	router := gjson.GetBytes(d.raw, routerKey)
	for _, t := range models.RouterTypes {
		if v := router.Get(t); v.Exists() && v.String() != "" {
			r.Entries[t] = v.String()
		}
	}
	if th := router.Get(models.LongContextThresholdKey); th.Exists() {
		r.LongContextThreshold = int(th.Int())
		r.HasThreshold = true
	}
	return r
}

// RouterEntry returns the "provider,model" value of a router type
func (d *Document) RouterEntry(routerType string) (string, bool) {
	return d.Router().Get(routerType)
}

// LongContextThreshold returns the threshold and whether it is set
func (d *Document) LongContextThreshold() (int, bool) {
	r := d.Router()
	return r.LongContextThreshold, r.HasThreshold
}

// SetRouter points a router type at provider,model after checking both exist
func (d *Document) SetRouter(routerType string, ref models.ModelRef) error {
	if err := validation.ValidateRouterType(routerType); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRouterType, err)
	}
	if err := d.checkModelRef(ref); err != nil {
		return err
	}
	return d.set(routerKey+"."+routerType, ref.String())
}

// DeleteRouter removes a router entry. Removing longContext also removes
// longContextThreshold; thresholdDropped reports when that happened.
func (d *Document) DeleteRouter(routerType string) (thresholdDropped bool, err error) {
	if err := validation.ValidateRouterType(routerType); err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidRouterType, err)
	}
	if routerType == models.RouterDefault {
		return false, ErrCannotDeleteDefault
	}
	if !gjson.GetBytes(d.raw, routerKey+"."+routerType).Exists() {
		return false, fmt.Errorf("%w: router '%s' is not set", ErrNotFound, routerType)
	}
	if err := d.delete(routerKey + "." + routerType); err != nil {
		return false, err
	}
	if routerType == models.RouterLongContext {
		return d.dropThreshold()
	}
	return false, nil
}

// SetLongContextThreshold sets the token threshold for the longContext router
func (d *Document) SetLongContextThreshold(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: longContextThreshold must be a positive integer, got %d", ErrInvalidValue, n)
	}
	if _, ok := d.RouterEntry(models.RouterLongContext); !ok {
		return fmt.Errorf("%w: longContext model must be set before setting longContextThreshold", ErrMissingPrerequisite)
	}
	return d.set(routerKey+"."+models.LongContextThresholdKey, n)
}

// AddProvider appends a provider. Names and base URLs must be unique.
func (d *Document) AddProvider(p models.Provider) error {
	iv := validation.NewInputValidator()
	if err := iv.ValidateProviderName(p.Name); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	if err := iv.ValidateURL(p.APIBaseURL); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}

	base := utils.TrimBaseURL(p.APIBaseURL)
	for _, existing := range d.Providers() {
		if existing.Name == p.Name {
			return fmt.Errorf("%w: provider '%s' already exists", ErrDuplicateProvider, p.Name)
		}
		if utils.TrimBaseURL(existing.APIBaseURL) == base {
			return fmt.Errorf("%w: provider '%s' already uses base URL '%s'", ErrDuplicateProvider, existing.Name, p.APIBaseURL)
		}
	}

	p.Models = validation.NormalizeModels(p.Models)
	if gjson.GetBytes(d.raw, providersKey).IsArray() {
		return d.set(providersKey+".-1", p)
	}
	return d.set(providersKey, []models.Provider{p})
}

// AddModel appends model to a provider's list
func (d *Document) AddModel(provider, model string) error {
	if err := validation.NewInputValidator().ValidateModelName(model); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	idx := d.providerIndex(provider)
	if idx < 0 {
		return fmt.Errorf("%w: provider '%s' not found in config", ErrUnknownProvider, provider)
	}
	p, _ := d.Provider(provider)
	if p.HasModel(model) {
		return fmt.Errorf("%w: model '%s' already exists in provider '%s'", ErrDuplicateModel, model, provider)
	}

	path := fmt.Sprintf("%s.%d.models", providersKey, idx)
	if gjson.GetBytes(d.raw, path).IsArray() {
		return d.set(path+".-1", model)
	}
	return d.set(path, []string{model})
}

// DeleteProvider removes a provider and all of its models
func (d *Document) DeleteProvider(name string) error {
	idx := d.providerIndex(name)
	if idx < 0 {
		return fmt.Errorf("%w: provider '%s' not found", ErrNotFound, name)
	}
	return d.delete(fmt.Sprintf("%s.%d", providersKey, idx))
}

// DeleteModel removes model from every provider listing it. When the
// longContext router pointed at the model, longContextThreshold goes too.
func (d *Document) DeleteModel(model string) (removedFrom []string, thresholdDropped bool, err error) {
	removedFrom = d.ProvidersForModel(model)
	if len(removedFrom) == 0 {
		return nil, false, fmt.Errorf("%w: model '%s' not found in any provider", ErrNotFound, model)
	}
	for _, provider := range removedFrom {
		if err := d.RemoveModelFrom(provider, model); err != nil {
			return nil, false, err
		}
	}

	if entry, ok := d.RouterEntry(models.RouterLongContext); ok {
		if ref, hasComma, _ := models.ParseModelRef(entry); hasComma && ref.Model == model {
			thresholdDropped, err = d.dropThreshold()
			if err != nil {
				return nil, false, err
			}
		}
	}
	return removedFrom, thresholdDropped, nil
}

// RemoveModelFrom removes model from a single provider
func (d *Document) RemoveModelFrom(provider, model string) error {
	idx := d.providerIndex(provider)
	if idx < 0 {
		return fmt.Errorf("%w: provider '%s' not found", ErrNotFound, provider)
	}

	var positions []int
	gjson.GetBytes(d.raw, fmt.Sprintf("%s.%d.models", providersKey, idx)).ForEach(func(key, value gjson.Result) bool {
		if value.String() == model {
			positions = append(positions, int(key.Int()))
		}
		return true
	})
	if len(positions) == 0 {
		return fmt.Errorf("%w: model '%s' not found in provider '%s'", ErrNotFound, model, provider)
	}

	// back to front so earlier indices stay valid
	for i := len(positions) - 1; i >= 0; i-- {
		if err := d.delete(fmt.Sprintf("%s.%d.models.%d", providersKey, idx, positions[i])); err != nil {
			return err
		}
	}
	return nil
}

// RoutersReferencing returns the router types whose entry points at
// provider,model. An empty provider or model matches anything.
func (d *Document) RoutersReferencing(provider, model string) []string {
	var types []string
	r := d.Router()
	for _, t := range models.RouterTypes {
		entry, ok := r.Get(t)
		if !ok {
			continue
		}
		ref, hasComma, err := models.ParseModelRef(entry)
		if !hasComma || err != nil {
			continue
		}
		if (provider == "" || ref.Provider == provider) && (model == "" || ref.Model == model) {
			types = append(types, t)
		}
	}
	return types
}

func (d *Document) checkModelRef(ref models.ModelRef) error {
	p, ok := d.Provider(ref.Provider)
	if !ok {
		return fmt.Errorf("%w: provider '%s' not found in config", ErrUnknownProvider, ref.Provider)
	}
	if !p.HasModel(ref.Model) {
		return fmt.Errorf("%w: model '%s' not found in provider '%s'", ErrUnknownModel, ref.Model, ref.Provider)
	}
	return nil
}

func (d *Document) dropThreshold() (bool, error) {
	path := routerKey + "." + models.LongContextThresholdKey
	if !gjson.GetBytes(d.raw, path).Exists() {
		return false, nil
	}
	if err := d.delete(path); err != nil {
		return false, err
	}
	return true, nil
}

func (d *Document) providerIndex(name string) int {
	idx, found := -1, -1
	gjson.GetBytes(d.raw, providersKey).ForEach(func(_, v gjson.Result) bool {
		idx++
		if v.Get("name").String() == name {
			found = idx
			return false
		}
		return true
	})
	return found
}

func (d *Document) set(path string, value interface{}) error {
	raw, err := sjson.SetBytes(d.raw, path, value)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", path, err)
	}
	d.raw = raw
	return nil
}

func (d *Document) delete(path string) error {
	raw, err := sjson.DeleteBytes(d.raw, path)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", path, err)
	}
	d.raw = raw
	return nil
}

func providerFrom(v gjson.Result) models.Provider {
	p := models.Provider{
		Name:       v.Get("name").String(),
		APIBaseURL: v.Get("api_base_url").String(),
		APIKey:     v.Get("api_key").String(),
		Models:     []string{},
	}
	v.Get("models").ForEach(func(_, m gjson.Result) bool {
		p.Models = append(p.Models, m.String())
		return true
	})
	return p
}
