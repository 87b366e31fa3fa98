package core

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxCampaignNameLength matches the campaigns.name column width.
const MaxCampaignNameLength = 50

// DefaultOutputFilenameTemplate names processed files when a campaign has no template.
const DefaultOutputFilenameTemplate = "processed_{filename}"

// Field is one configured output column of a campaign.
type Field struct {
	ID          string `json:"id" yaml:"id,omitempty"`
	Name        string `json:"name" yaml:"name"`
	DisplayName string `json:"displayName" yaml:"displayName,omitempty"`
	Order       int    `json:"order" yaml:"order"`
	Required    bool   `json:"required" yaml:"required,omitempty"`
	Rules       []Rule `json:"rules" yaml:"rules"`
}

// Campaign is a named column configuration used to reorganize uploaded files.
type Campaign struct {
	ID                     uuid.UUID `json:"uuid" yaml:"uuid,omitempty"`
	Name                   string    `json:"name" yaml:"name"`
	Description            string    `json:"description" yaml:"description,omitempty"`
	OutputFilenameTemplate string    `json:"outputFilenameTemplate" yaml:"outputFilenameTemplate,omitempty"`
	Fields                 []Field   `json:"fields" yaml:"fields"`
	CreatedAt              time.Time `json:"created_at" yaml:"-"`
	UpdatedAt              time.Time `json:"updated_at" yaml:"-"`
}

// Config returns the campaign's column configuration sorted by field order.
// Fields with equal order keep their declared position.
func (c Campaign) Config() CampaignConfig {
	fields := append([]Field(nil), c.Fields...)
	sort.SliceStable(fields, func(i, j int) bool {
		return fields[i].Order < fields[j].Order
	})

	cfg := make(CampaignConfig, len(fields))
	for i, f := range fields {
		cfg[i] = ColumnSpec{Name: f.Name, Rules: f.Rules}
	}
	return cfg
}

// Validate checks the campaign shape. Rule values are deliberately not
// checked: unusable values are skipped at transform time.
func (c Campaign) Validate() error {
	var errs []string

	name := strings.TrimSpace(c.Name)
	if name == "" {
		errs = append(errs, "name is required")
	}
	if len(name) > MaxCampaignNameLength {
		errs = append(errs, fmt.Sprintf("name must be at most %d characters", MaxCampaignNameLength))
	}
	if len(c.Fields) == 0 {
		errs = append(errs, "at least one field is required")
	}
	for i, f := range c.Fields {
		if strings.TrimSpace(f.Name) == "" {
			errs = append(errs, fmt.Sprintf("field %d: name is required", i+1))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidCampaign, strings.Join(errs, "; "))
	}
	return nil
}

// OutputFilename renders the download name for a processed input file.
// Supported placeholders: {filename}, {basename}, {campaign}, {date}.
func (c Campaign) OutputFilename(input string, now time.Time) string {
	tmpl := c.OutputFilenameTemplate
	if strings.TrimSpace(tmpl) == "" {
		tmpl = DefaultOutputFilenameTemplate
	}

	input = filepath.Base(input)
	base := strings.TrimSuffix(input, filepath.Ext(input))

	name := strings.NewReplacer(
		"{filename}", input,
		"{basename}", base,
		"{campaign}", c.Name,
		"{date}", now.Format("2006-01-02"),
	).Replace(tmpl)

	name = filepath.Base(name)
	if !strings.HasSuffix(strings.ToLower(name), ".csv") {
		name += ".csv"
	}
	return name
}
