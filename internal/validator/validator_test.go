package validator

import (
	"testing"

	"github.com/research-hub/submission-service/internal/authz"
)

func newTestValidator() *Validator {
	return New(authz.NewDefaultIndexAllowlist())
}

func strPtr(s string) *string { return &s }

func TestValidate_SignUpRequest(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name     string
		req      SignUpRequest
		wantRule string // "" means valid
	}{
		{
			name: "valid without index number",
			req:  SignUpRequest{Name: "Alice", Email: "alice@example.com", Password: "supersecret"},
		},
		{
			name: "valid with allow-listed index number",
			req: SignUpRequest{
				Name: "Alice", Email: "alice@example.com", Password: "supersecret",
				IndexNumber: strPtr("UGR0202110312"),
			},
		},
		{
			name:     "short password",
			req:      SignUpRequest{Name: "Alice", Email: "alice@example.com", Password: "short"},
			wantRule: "min",
		},
		{
			name:     "bad email",
			req:      SignUpRequest{Name: "Alice", Email: "not-an-email", Password: "supersecret"},
			wantRule: "email",
		},
		{
			name:     "short name",
			req:      SignUpRequest{Name: "A", Email: "alice@example.com", Password: "supersecret"},
			wantRule: "min",
		},
		{
			name: "malformed index number",
			req: SignUpRequest{
				Name: "Alice", Email: "alice@example.com", Password: "supersecret",
				IndexNumber: strPtr("UGR123"),
			},
			wantRule: "index_format",
		},
		{
			name: "well-formed but unauthorized index number",
			req: SignUpRequest{
				Name: "Alice", Email: "alice@example.com", Password: "supersecret",
				IndexNumber: strPtr("UGR9999999999"),
			},
			wantRule: "index_authorized",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := v.Validate(&tt.req)
			if tt.wantRule == "" {
				if len(errs) != 0 {
					t.Fatalf("expected valid, got %v", errs)
				}
				return
			}
			if len(errs) == 0 {
				t.Fatalf("expected rule %q to fail, got none", tt.wantRule)
			}
			found := false
			for _, e := range errs {
				if e.Rule == tt.wantRule {
					found = true
				}
			}
			if !found {
				t.Errorf("expected rule %q among %v", tt.wantRule, errs)
			}
		})
	}
}

func TestValidateSignIn_RequiresEmailOrIndexNumber(t *testing.T) {
	v := newTestValidator()

	if errs := v.ValidateSignIn(&SignInRequest{Password: "supersecret"}); len(errs) == 0 {
		t.Error("expected error when both email and index number are missing")
	}
	if errs := v.ValidateSignIn(&SignInRequest{Email: "a@b.com", Password: "supersecret"}); len(errs) != 0 {
		t.Errorf("email + password should be valid, got %v", errs)
	}
	if errs := v.ValidateSignIn(&SignInRequest{IndexNumber: "UGR0202110312", Password: "supersecret"}); len(errs) != 0 {
		t.Errorf("index number + password should be valid, got %v", errs)
	}
	// Sign-in only checks the format, not the allowlist.
	if errs := v.ValidateSignIn(&SignInRequest{IndexNumber: "UGR9999999999", Password: "supersecret"}); len(errs) != 0 {
		t.Errorf("unlisted but well-formed index number should pass sign-in validation, got %v", errs)
	}
}

func TestValidate_SubmitProjectRequest(t *testing.T) {
	v := newTestValidator()

	valid := SubmitProjectRequest{Name: "Gravity Study", Description: "A description over ten chars", Department: "Physics"}
	if errs := v.Validate(&valid); len(errs) != 0 {
		t.Fatalf("expected valid, got %v", errs)
	}

	short := SubmitProjectRequest{Name: "Gravity Study", Description: "too short", Department: "Physics"}
	if errs := v.Validate(&short); len(errs) == 0 {
		t.Error("expected short description to fail")
	}
}
