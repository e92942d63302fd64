// Package config provides configuration structures and utilities for
// phyloreport: CLI options with their defaults and validation, and the
// optional .phyloreport settings file holding default inference settings and
// report presentation options.
package config
