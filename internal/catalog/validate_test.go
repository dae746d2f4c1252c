package catalog

import (
	"strings"
	"testing"
)

func TestValidateProvider(t *testing.T) {
	tests := []struct {
		name      string
		provider  Provider
		wantValid bool
		wantErr   string
	}{
		{
			name: "valid openai provider",
			provider: Provider{
				ID:       "p1",
				Name:     "OpenRouter",
				Endpoint: "https://openrouter.ai/api/v1",
				Type:     KindOpenAI,
				APIKey:   "sk-test",
			},
			wantValid: true,
		},
		{
			name: "missing name",
			provider: Provider{
				Endpoint: "https://x",
				Type:     KindOpenAI,
				APIKey:   "k",
			},
			wantValid: false,
			wantErr:   "name is required",
		},
		{
			name: "missing endpoint",
			provider: Provider{
				Name:   "X",
				Type:   KindOpenAI,
				APIKey: "k",
			},
			wantValid: false,
			wantErr:   "endpoint is required",
		},
		{
			name: "missing type",
			provider: Provider{
				Name:     "X",
				Endpoint: "https://x",
				APIKey:   "k",
			},
			wantValid: false,
			wantErr:   "type is required",
		},
		{
			name: "unknown type",
			provider: Provider{
				Name:     "X",
				Endpoint: "https://x",
				Type:     Kind("cohere"),
				APIKey:   "k",
			},
			wantValid: false,
			wantErr:   "unknown provider type",
		},
		{
			name: "missing key on named provider",
			provider: Provider{
				Name:     "X",
				Endpoint: "https://x",
				Type:     KindAnthropic,
			},
			wantValid: false,
			wantErr:   "API key is required",
		},
		{
			name: "custom provider without key is fine",
			provider: Provider{
				Name:     "Local",
				Endpoint: "http://localhost:1234/v1",
				Type:     KindCustom,
			},
			wantValid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateProvider(tt.provider)
			if res.Valid != tt.wantValid {
				t.Errorf("Valid = %v, want %v (errors: %v)", res.Valid, tt.wantValid, res.Errors)
			}
			if tt.wantErr != "" && !containsError(res.Errors, tt.wantErr) {
				t.Errorf("errors %v missing %q", res.Errors, tt.wantErr)
			}
			if tt.wantValid && len(res.Errors) != 0 {
				t.Errorf("valid result carries errors: %v", res.Errors)
			}
		})
	}
}

func TestValidateModel(t *testing.T) {
	providers := []Provider{
		{ID: "p1", Name: "X", Endpoint: "https://x", Type: KindOpenAI, APIKey: "k"},
	}

	tests := []struct {
		name      string
		model     Model
		wantValid bool
		wantErr   string
	}{
		{
			name: "valid model",
			model: Model{
				ID:           "m1",
				ModelID:      "gpt-4o",
				Name:         "GPT-4o",
				ProviderID:   "p1",
				AllowedRoles: []Role{RoleMain, RoleFallback},
			},
			wantValid: true,
		},
		{
			name: "dangling provider reference",
			model: Model{
				ID:           "m1",
				ModelID:      "gpt-4o",
				Name:         "GPT-4o",
				ProviderID:   "nope",
				AllowedRoles: []Role{RoleMain},
			},
			wantValid: false,
			wantErr:   "unknown provider",
		},
		{
			name: "no roles",
			model: Model{
				ID:         "m1",
				ModelID:    "gpt-4o",
				Name:       "GPT-4o",
				ProviderID: "p1",
			},
			wantValid: false,
			wantErr:   "no allowed roles",
		},
		{
			name: "unknown role",
			model: Model{
				ID:           "m1",
				ModelID:      "gpt-4o",
				Name:         "GPT-4o",
				ProviderID:   "p1",
				AllowedRoles: []Role{Role("editor")},
			},
			wantValid: false,
			wantErr:   "unknown role",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateModel(tt.model, providers)
			if res.Valid != tt.wantValid {
				t.Errorf("Valid = %v, want %v (errors: %v)", res.Valid, tt.wantValid, res.Errors)
			}
			if tt.wantErr != "" && !containsError(res.Errors, tt.wantErr) {
				t.Errorf("errors %v missing %q", res.Errors, tt.wantErr)
			}
		})
	}
}

func containsError(errors []string, substr string) bool {
	for _, e := range errors {
		if strings.Contains(e, substr) {
			return true
		}
	}
	return false
}
