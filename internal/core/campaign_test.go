package core

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestCampaign_Config(t *testing.T) {
	c := Campaign{Fields: []Field{
		{Name: "third", Order: 3},
		{Name: "first", Order: 1, Rules: []Rule{{Type: RuleUppercase}}},
		{Name: "tie-a", Order: 2},
		{Name: "tie-b", Order: 2},
	}}

	cfg := c.Config()

	if got := cfg.Names(); !reflect.DeepEqual(got, []string{"first", "tie-a", "tie-b", "third"}) {
		t.Errorf("Names() = %q", got)
	}
	if len(cfg[0].Rules) != 1 || cfg[0].Rules[0].Type != RuleUppercase {
		t.Errorf("rules not carried over: %+v", cfg[0])
	}
	if c.Fields[0].Name != "third" {
		t.Error("Config() reordered the campaign fields")
	}
}

func TestCampaign_Validate(t *testing.T) {
	tests := []struct {
		name     string
		campaign Campaign
		wantErr  string
	}{
		{
			name:     "valid",
			campaign: Campaign{Name: "Q1", Fields: []Field{{Name: "A"}}},
		},
		{
			name:     "valid with unusable rule value",
			campaign: Campaign{Name: "Q1", Fields: []Field{{Name: "A", Rules: []Rule{{Type: RuleReplaceText, Value: StringValue("nocomma")}}}}},
		},
		{
			name:     "missing name",
			campaign: Campaign{Name: "  ", Fields: []Field{{Name: "A"}}},
			wantErr:  "name is required",
		},
		{
			name:     "long name",
			campaign: Campaign{Name: strings.Repeat("x", MaxCampaignNameLength+1), Fields: []Field{{Name: "A"}}},
			wantErr:  "at most 50 characters",
		},
		{
			name:     "no fields",
			campaign: Campaign{Name: "Q1"},
			wantErr:  "at least one field",
		},
		{
			name:     "unnamed field",
			campaign: Campaign{Name: "Q1", Fields: []Field{{Name: "A"}, {Name: ""}}},
			wantErr:  "field 2: name is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.campaign.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidCampaign) {
				t.Fatalf("error = %v, want ErrInvalidCampaign", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestCampaign_OutputFilename(t *testing.T) {
	now := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		template string
		input    string
		want     string
	}{
		{"default", "", "leads.csv", "processed_leads.csv"},
		{"campaign and date", "{campaign}_{date}", "leads.csv", "Q1_2024-03-05.csv"},
		{"basename", "{basename}-clean.csv", "leads.CSV", "leads-clean.csv"},
		{"strips input directories", "", "../../etc/leads.csv", "processed_leads.csv"},
		{"strips template directories", "../{filename}", "leads.csv", "leads.csv"},
		{"keeps upper-case extension", "{filename}", "LEADS.CSV", "LEADS.CSV"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Campaign{Name: "Q1", OutputFilenameTemplate: tt.template}
			if got := c.OutputFilename(tt.input, now); got != tt.want {
				t.Errorf("OutputFilename(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCampaign_JSON(t *testing.T) {
	payload := `{
		"name": "Spring",
		"description": "spring leads",
		"fields": [
			{"id": "f1", "name": "Email", "displayName": "E-mail", "order": 2, "required": true,
			 "rules": [{"id": "r1", "type": "TO_LOWERCASE", "value": ""}]},
			{"id": "f2", "name": "Amount", "order": 1,
			 "rules": [{"id": "r2", "type": "MULTIPLY_BY", "value": 100}]}
		]
	}`

	var c Campaign
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	cfg := c.Config()
	if got := cfg.Names(); !reflect.DeepEqual(got, []string{"Amount", "Email"}) {
		t.Errorf("Names() = %q", got)
	}
	if cfg[1].Rules[0].Type != RuleLowercase {
		t.Errorf("alias not resolved: %q", cfg[1].Rules[0].Type)
	}
	if f, ok := cfg[0].Rules[0].Value.Float(); !ok || f != 100 {
		t.Errorf("multiplier = %v", cfg[0].Rules[0].Value)
	}
	if c.Fields[0].DisplayName != "E-mail" || !c.Fields[0].Required {
		t.Errorf("field metadata lost: %+v", c.Fields[0])
	}
}
