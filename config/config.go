// Package config provides configuration options for the stepwright schema
// compiler and exchange-file loader.
//
// This package provides a simple, programmatic API for configuring loader
// behavior when using stepwright as a library. It focuses on providing
// clean Go APIs rather than external configuration file management.
package config

// LoadOptions contains configuration options for Part 21 exchange-file
// loading. It controls how tolerant a load run is of per-record errors.
type LoadOptions struct {
	// StopAtFirstError, when true, makes a load run return as soon as the
	// first per-record deserialize or insert error is hit instead of
	// collecting every error across the whole data section.
	StopAtFirstError bool
}

// DefaultLoadOptions returns the default load options: tolerant loading,
// continuing past per-record errors so a single malformed instance doesn't
// hide problems elsewhere in the file.
func DefaultLoadOptions() *LoadOptions {
	return &LoadOptions{
		StopAtFirstError: false,
	}
}

// WithStopAtFirstError returns a new LoadOptions with StopAtFirstError set
// as given.
//
// Example:
//
//	opts := config.DefaultLoadOptions().WithStopAtFirstError(true)
func (o *LoadOptions) WithStopAtFirstError(stop bool) *LoadOptions {
	return &LoadOptions{
		StopAtFirstError: stop,
	}
}
