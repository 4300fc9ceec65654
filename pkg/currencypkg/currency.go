// Package currencypkg provides the configured set of supported currencies.
package currencypkg

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// Set holds the currencies a deployment supports.
//
// The set is configuration, not a constant: different deployments run with
// different currency lists.
type Set struct {
	codes map[string]struct{}
	list  []string
}

// NewSet builds a Set from a comma separated list of 3-letter ISO codes.
func NewSet(codes string) Set {
	s := Set{codes: make(map[string]struct{})}

	for _, c := range strings.Split(codes, ",") {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c == "" {
			continue
		}

		if _, ok := s.codes[c]; ok {
			continue
		}

		s.codes[c] = struct{}{}
		s.list = append(s.list, c)
	}

	return s
}

// IsSupported returns true if the currency is in the set.
func (s Set) IsSupported(currency string) bool {
	_, ok := s.codes[currency]
	return ok
}

// List returns the supported currency codes in configuration order.
func (s Set) List() []string {
	return s.list
}

// Validator returns a gin binding validator for the "currency" tag.
func (s Set) Validator() validator.Func {
	return func(fl validator.FieldLevel) bool {
		if c, ok := fl.Field().Interface().(string); ok {
			return s.IsSupported(c)
		}

		return false
	}
}
