package core

// transform.go orchestrates a campaign over a table:
//
//  1. Every configured column must exist in the table (ValidationError otherwise).
//  2. Each configured column's rules run in declared order, each rule feeding the next.
//  3. The output keeps exactly the configured columns, in configured order.
//
// Transform never mutates its input and never returns a partial table with an error.

// ColumnSpec names one output column and the rules applied to it.
type ColumnSpec struct {
	Name  string `json:"name" yaml:"name"`
	Rules []Rule `json:"rules" yaml:"rules"`
}

// CampaignConfig is the ordered column list of a campaign. It defines both
// the columns required in the input and the output column order.
type CampaignConfig []ColumnSpec

// Names returns the configured column names in order.
func (c CampaignConfig) Names() []string {
	names := make([]string, len(c))
	for i, spec := range c {
		names[i] = spec.Name
	}
	return names
}

// normalize collapses duplicate names: a name keeps the position of its first
// declaration and the rules of its last one.
func (c CampaignConfig) normalize() CampaignConfig {
	pos := make(map[string]int, len(c))
	out := make(CampaignConfig, 0, len(c))
	for _, spec := range c {
		if i, dup := pos[spec.Name]; dup {
			out[i].Rules = spec.Rules
			continue
		}
		pos[spec.Name] = len(out)
		out = append(out, spec)
	}
	return out
}

// Missing returns the configured names absent from t, in configuration order.
func (c CampaignConfig) Missing(t *Table) []string {
	var missing []string
	seen := make(map[string]bool, len(c))
	for _, spec := range c {
		if seen[spec.Name] {
			continue
		}
		seen[spec.Name] = true
		if !t.Has(spec.Name) {
			missing = append(missing, spec.Name)
		}
	}
	return missing
}

// TransformStats summarizes one Transform call.
type TransformStats struct {
	Rows         int
	Columns      int
	RulesApplied int
	RulesSkipped int
}

// Transform validates t against cfg, applies every column's rules and returns
// a new table holding exactly the configured columns in configured order.
func Transform(t *Table, cfg CampaignConfig) (*Table, error) {
	out, _, err := TransformWithStats(t, cfg)
	return out, err
}

// TransformWithStats is Transform that also reports rule counts.
func TransformWithStats(t *Table, cfg CampaignConfig) (*Table, TransformStats, error) {
	if missing := cfg.Missing(t); len(missing) > 0 {
		return nil, TransformStats{}, &ValidationError{MissingColumns: missing}
	}

	cfg = cfg.normalize()
	work := t.clone()
	var stats TransformStats

	for _, spec := range cfg {
		col, ok := work.Column(spec.Name)
		if !ok {
			continue
		}
		if col.Kind() != NumericKind {
			col = col.AsText()
		}
		for _, rule := range spec.Rules {
			var applied bool
			col, applied = ApplyRule(col, rule)
			if applied {
				stats.RulesApplied++
			} else {
				stats.RulesSkipped++
			}
		}
		work.replace(col)
	}

	out := work.Select(cfg.Names())
	stats.Rows = out.RowCount()
	stats.Columns = len(out.columns)
	return out, stats, nil
}

// TransformCSV parses raw delimited text, transforms it with cfg and
// serializes the result.
func TransformCSV(raw []byte, cfg CampaignConfig) ([]byte, TransformStats, error) {
	t, err := ParseBytes(raw)
	if err != nil {
		return nil, TransformStats{}, err
	}
	out, stats, err := TransformWithStats(t, cfg)
	if err != nil {
		return nil, TransformStats{}, err
	}
	data, err := out.Bytes()
	if err != nil {
		return nil, TransformStats{}, err
	}
	return data, stats, nil
}
