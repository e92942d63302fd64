package main

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestNewRootCmd tests the root command creation.
func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "phyloreport" {
			t.Errorf("expected use 'phyloreport', got %q", cmd.Use)
		}
	})

	t.Run("has descriptions", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" || cmd.Long == "" {
			t.Error("expected non-empty short and long descriptions")
		}
	})

	t.Run("has version", func(t *testing.T) {
		t.Parallel()
		if cmd.Version == "" {
			t.Error("expected non-empty version")
		}
	})

	t.Run("has global flags", func(t *testing.T) {
		t.Parallel()
		verbose := cmd.PersistentFlags().Lookup("verbose")
		if verbose == nil {
			t.Fatal("expected verbose flag")
		}
		if verbose.Shorthand != "v" {
			t.Errorf("expected shorthand 'v', got %q", verbose.Shorthand)
		}
		identifiers := cmd.PersistentFlags().Lookup("show-identifiers")
		if identifiers == nil {
			t.Fatal("expected show-identifiers flag")
		}
		if identifiers.DefValue != "false" {
			t.Errorf("expected default 'false', got %q", identifiers.DefValue)
		}
	})

	t.Run("has subcommands", func(t *testing.T) {
		t.Parallel()
		var names []string
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}
		// cobra sorts subcommands by name
		want := []string{"batch", "init", "render", "version"}
		if diff := cmp.Diff(want, names); diff != "" {
			t.Errorf("subcommands mismatch (-want +got):\n%s", diff)
		}
	})
}

// TestGetBoolFlag tests lookups of local and inherited flags.
func TestGetBoolFlag(t *testing.T) {
	t.Parallel()

	t.Run("inherited from root", func(t *testing.T) {
		t.Parallel()
		root := NewRootCmd()
		if err := root.PersistentFlags().Set("show-identifiers", "true"); err != nil {
			t.Fatal(err)
		}
		render, _, err := root.Find([]string{"render"})
		if err != nil {
			t.Fatal(err)
		}
		if !getBoolFlag(render, "show-identifiers") {
			t.Error("expected show-identifiers to be true")
		}
	})

	t.Run("missing flag", func(t *testing.T) {
		t.Parallel()
		if getVerboseFlag(NewInitCmd()) {
			t.Error("expected false for an undefined flag")
		}
	})
}
