package main

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/nao1215/recordcheck/internal/check"
	"github.com/nao1215/recordcheck/internal/config"
)

// TestNewInitCmd tests the init command creation.
func TestNewInitCmd(t *testing.T) {
	t.Parallel()

	cmd := NewInitCmd()

	t.Run("has output flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("output")
		if flag == nil {
			t.Fatal("expected output flag")
		}
		if flag.Shorthand != "o" {
			t.Errorf("expected shorthand 'o', got %q", flag.Shorthand)
		}
		if flag.DefValue != config.DefaultConfigFile {
			t.Errorf("expected default %q, got %q", config.DefaultConfigFile, flag.DefValue)
		}
	})

	t.Run("has force flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("force")
		if flag == nil {
			t.Fatal("expected force flag")
		}
		if flag.Shorthand != "f" || flag.DefValue != "false" {
			t.Errorf("unexpected force flag: %+v", flag)
		}
	})
}

// TestRunInitCmd tests the init command execution.
func TestRunInitCmd(t *testing.T) {
	t.Parallel()

	t.Run("creates rules file", func(t *testing.T) {
		t.Parallel()

		outputPath := filepath.Join(t.TempDir(), "nested", ".recordcheck")

		var out bytes.Buffer
		cmd := NewInitCmd()
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"-o", outputPath})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		info, err := os.Stat(outputPath)
		if err != nil {
			t.Fatalf("expected rules file to be created: %v", err)
		}
		if info.Mode().Perm() != 0600 {
			t.Errorf("expected mode 0600, got %v", info.Mode().Perm())
		}
		if !strings.Contains(out.String(), "Created rules file") {
			t.Errorf("unexpected output: %q", out.String())
		}
	})

	t.Run("refuses to overwrite without force", func(t *testing.T) {
		t.Parallel()

		outputPath := filepath.Join(t.TempDir(), ".recordcheck")
		if err := os.WriteFile(outputPath, []byte("keep me"), 0600); err != nil {
			t.Fatal(err)
		}

		cmd := NewInitCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetArgs([]string{"-o", outputPath})
		if err := cmd.Execute(); err == nil {
			t.Fatal("expected error for existing file")
		}

		content, err := os.ReadFile(outputPath)
		if err != nil {
			t.Fatal(err)
		}
		if string(content) != "keep me" {
			t.Error("expected existing file to be untouched")
		}
	})

	t.Run("overwrites with force", func(t *testing.T) {
		t.Parallel()

		outputPath := filepath.Join(t.TempDir(), ".recordcheck")
		if err := os.WriteFile(outputPath, []byte("old"), 0600); err != nil {
			t.Fatal(err)
		}

		cmd := NewInitCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetArgs([]string{"-o", outputPath, "-f"})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		content, err := os.ReadFile(outputPath)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(content), "dedupKeys:") {
			t.Error("expected template content")
		}
	})
}

// TestRulesTemplate tests that the embedded template matches the built-in
// catalog, so that init followed by validate changes nothing.
func TestRulesTemplate(t *testing.T) {
	t.Parallel()

	content, err := rulesTemplate.ReadFile(rulesTemplatePath)
	if err != nil {
		t.Fatalf("failed to read template: %v", err)
	}

	path := filepath.Join(t.TempDir(), ".recordcheck")
	if err := os.WriteFile(path, content, 0600); err != nil {
		t.Fatal(err)
	}

	rf, err := config.LoadConfigFile(path)
	if err != nil {
		t.Fatalf("template does not parse: %v", err)
	}
	rules, err := rf.Rules()
	if err != nil {
		t.Fatalf("template rules are invalid: %v", err)
	}

	defaults := check.DefaultRules()
	if !reflect.DeepEqual(rules.Bounds, defaults.Bounds) {
		t.Errorf("bounds differ: %+v vs %+v", rules.Bounds, defaults.Bounds)
	}
	if !reflect.DeepEqual(rules.DedupKeys, defaults.DedupKeys) || !reflect.DeepEqual(rules.Required, defaults.Required) {
		t.Errorf("key columns differ: %+v", rules)
	}
	if rules.Phone != defaults.Phone {
		t.Errorf("phone rules differ: %+v vs %+v", rules.Phone, defaults.Phone)
	}
	if !rules.Dates.Floor.Equal(defaults.Dates.Floor) || rules.Dates.MaxAge != defaults.Dates.MaxAge {
		t.Errorf("date rules differ: %+v vs %+v", rules.Dates, defaults.Dates)
	}
}
