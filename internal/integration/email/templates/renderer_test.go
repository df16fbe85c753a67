package templates

import (
	"strings"
	"testing"
)

func TestRenderer_Render(t *testing.T) {
	renderer, err := NewRenderer()
	if err != nil {
		t.Fatalf("failed to parse templates: %v", err)
	}

	tests := []struct {
		name     string
		template string
		data     any
		contains string
		wantErr  bool
	}{
		{
			name:     "verification link lands in the html body",
			template: "email_verification",
			data:     VerificationData{UserName: "Ana", VerificationURL: "http://app.test/verify-email?token=abc", ExpiresIn: "1 day"},
			contains: "token=abc",
		},
		{
			name:     "budget alert shows the spent amount",
			template: "budget_alert",
			data:     BudgetAlertData{UserName: "Ana", MonthLabel: "Mar", MonthlyBudget: "$500.00", MonthlySpent: "$612.50"},
			contains: "$612.50",
		},
		{
			name:     "unknown template",
			template: "newsletter",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html, text, err := renderer.Render(tt.template, tt.data)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(html, tt.contains) {
				t.Errorf("expected html body to contain %q", tt.contains)
			}
			if text == "" {
				t.Error("expected a text body")
			}
		})
	}
}
