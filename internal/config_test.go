package internal

import (
	"strings"
	"testing"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCorpusConfig_RequiresCategories(t *testing.T) {
	cfg := CorpusConfig{Path: "."}
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty category set should fail validation")
	}
}

func TestCorpusConfig_RejectsEmptyCategoryName(t *testing.T) {
	cfg := CorpusConfig{Path: ".", Categories: []string{"prompts", ""}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("blank category name should fail validation")
	}
}

func TestCatalogConfig_RequiresOutput(t *testing.T) {
	cfg := CatalogConfig{}
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty output path should fail validation")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if len(cfg.Corpus.Categories) != 3 {
		t.Errorf("default categories = %v", cfg.Corpus.Categories)
	}
	if !cfg.Catalog.QuoteDescription || cfg.Catalog.Enrich {
		t.Errorf("defaults should be the basic profile: %+v", cfg.Catalog)
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}
