// Copyright (c) Stellio Hub
// SPDX-License-Identifier: Apache-2.0

package env

import (
	"github.com/caarlos0/env/v7"
)

// Options tune how Parse reads the environment.
type Options struct {
	// Environment overrides the process environment, mainly for tests.
	Environment map[string]string

	// TagName replaces the default `env` struct tag name.
	TagName string

	// RequiredIfNoDef treats every key without an envDefault as required.
	RequiredIfNoDef bool

	// OnSet is called for each value as it is set.
	OnSet env.OnSetFn

	// Prefix is prepended to every key before lookup.
	Prefix string
}

// Parse fills v from the environment according to its env tags.
func Parse(v interface{}, opts ...Options) error {
	altOpts := []env.Options{}

	for _, opt := range opts {
		altOpts = append(altOpts, env.Options{
			Environment:     opt.Environment,
			TagName:         opt.TagName,
			RequiredIfNoDef: opt.RequiredIfNoDef,
			OnSet:           opt.OnSet,
			Prefix:          opt.Prefix,
		})
	}

	return env.Parse(v, altOpts...)
}
