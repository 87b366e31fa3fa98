package core

import (
	"errors"
	"reflect"
	"testing"
)

func TestTransform_RuleOrderMatters(t *testing.T) {
	tbl := mustParse(t, "A\nab\n")

	tests := []struct {
		name  string
		rules []Rule
		want  string
	}{
		{
			name:  "uppercase then prefix",
			rules: []Rule{{Type: RuleUppercase}, {Type: RuleAddPrefix, Value: StringValue("x")}},
			want:  "xAB",
		},
		{
			name:  "prefix then uppercase",
			rules: []Rule{{Type: RuleAddPrefix, Value: StringValue("x")}, {Type: RuleUppercase}},
			want:  "XAB",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Transform(tbl, CampaignConfig{{Name: "A", Rules: tt.rules}})
			if err != nil {
				t.Fatalf("Transform() error = %v", err)
			}
			if got := out.Row(0)[0]; got != tt.want {
				t.Errorf("cell = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTransform_MissingColumns(t *testing.T) {
	tbl := mustParse(t, "A,B\n1,2\n")

	out, err := Transform(tbl, CampaignConfig{{Name: "A"}, {Name: "C"}, {Name: "D"}, {Name: "C"}})

	if out != nil {
		t.Error("expected no table on validation failure")
	}
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
	if !reflect.DeepEqual(valErr.MissingColumns, []string{"C", "D"}) {
		t.Errorf("MissingColumns = %q, want [C D]", valErr.MissingColumns)
	}
	if got := valErr.Error(); got != "missing required columns: C, D" {
		t.Errorf("Error() = %q", got)
	}
}

func TestTransform_SelectsAndReorders(t *testing.T) {
	tbl := mustParse(t, "C,A,B,D\nc1,a1,b1,d1\nc2,a2,b2,d2\n")

	out, err := Transform(tbl, CampaignConfig{{Name: "B"}, {Name: "A"}})
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}

	if got := out.Columns(); !reflect.DeepEqual(got, []string{"B", "A"}) {
		t.Errorf("Columns() = %q, want [B A]", got)
	}
	want := "B,A\nb1,a1\nb2,a2\n"
	if got := mustBytes(t, out); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestTransform_PreservesRowCount(t *testing.T) {
	tbl := mustParse(t, "name,amount,code\nalice,10,a\nbob,x,b\ncarol,,c\n")

	cfg := CampaignConfig{
		{Name: "amount", Rules: []Rule{{Type: RuleMultiplyBy, Value: StringValue("3")}}},
		{Name: "name", Rules: []Rule{{Type: RuleUppercase}, {Type: RuleReplaceText, Value: StringValue("A,4")}}},
		{Name: "code", Rules: []Rule{{Type: RuleAddSuffix, Value: StringValue("!")}}},
	}

	out, stats, err := TransformWithStats(tbl, cfg)
	if err != nil {
		t.Fatalf("TransformWithStats() error = %v", err)
	}
	if out.RowCount() != tbl.RowCount() {
		t.Errorf("RowCount() = %d, want %d", out.RowCount(), tbl.RowCount())
	}
	want := "amount,name,code\n30,4LICE,a!\n,BOB,b!\n,C4ROL,c!\n"
	if got := mustBytes(t, out); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
	if stats.Rows != 3 || stats.Columns != 3 || stats.RulesApplied != 4 || stats.RulesSkipped != 0 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestTransform_DoesNotMutateInput(t *testing.T) {
	tbl := mustParse(t, "A,B\nab,1\n")
	before := mustBytes(t, tbl)

	_, err := Transform(tbl, CampaignConfig{
		{Name: "A", Rules: []Rule{{Type: RuleUppercase}}},
		{Name: "B", Rules: []Rule{{Type: RuleMultiplyBy, Value: NumberValue(2)}}},
	})
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}

	if after := mustBytes(t, tbl); after != before {
		t.Errorf("input changed: %q -> %q", before, after)
	}
}

func TestTransform_SkippedRulesAreCounted(t *testing.T) {
	tbl := mustParse(t, "A\nonlyoneword\n")

	out, stats, err := TransformWithStats(tbl, CampaignConfig{{Name: "A", Rules: []Rule{
		{Type: RuleReplaceText, Value: StringValue("onlyoneword")},
		{Type: RuleKind("UNKNOWN")},
		{Type: RuleAddPrefix},
	}}})
	if err != nil {
		t.Fatalf("TransformWithStats() error = %v", err)
	}
	if got := out.Row(0)[0]; got != "onlyoneword" {
		t.Errorf("cell = %q, want unchanged", got)
	}
	if stats.RulesApplied != 0 || stats.RulesSkipped != 3 {
		t.Errorf("stats = %+v, want 0 applied and 3 skipped", stats)
	}
}

func TestTransform_DuplicateConfigNames(t *testing.T) {
	tbl := mustParse(t, "A,B\nab,cd\n")

	out, err := Transform(tbl, CampaignConfig{
		{Name: "A", Rules: []Rule{{Type: RuleUppercase}}},
		{Name: "B"},
		{Name: "A", Rules: []Rule{{Type: RuleAddPrefix, Value: StringValue("p")}}},
	})
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}

	want := "A,B\npab,cd\n"
	if got := mustBytes(t, out); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestTransform_NumericPassThrough(t *testing.T) {
	tbl := mustParse(t, "price,qty\n1.50,2\n3,\n")

	out, err := Transform(tbl, CampaignConfig{{Name: "qty"}, {Name: "price"}})
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}

	want := "qty,price\n2,1.5\n,3\n"
	if got := mustBytes(t, out); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestTransform_HeaderOnly(t *testing.T) {
	tbl := mustParse(t, "A,B\n")

	out, err := Transform(tbl, CampaignConfig{{Name: "B", Rules: []Rule{{Type: RuleMultiplyBy, Value: NumberValue(2)}}}})
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if out.RowCount() != 0 {
		t.Errorf("RowCount() = %d, want 0", out.RowCount())
	}
	if got := mustBytes(t, out); got != "B\n" {
		t.Errorf("output = %q, want %q", got, "B\n")
	}
}

func TestTransformCSV(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		cfg     CampaignConfig
		want    string
		wantErr any
	}{
		{
			name:  "transform",
			input: "email,Name\nA@X.COM,bob\n",
			cfg: CampaignConfig{
				{Name: "Name", Rules: []Rule{{Type: RuleUppercase}}},
				{Name: "email", Rules: []Rule{{Type: RuleLowercase}}},
			},
			want: "Name,email\nBOB,a@x.com\n",
		},
		{
			name:    "parse error",
			input:   "a,b\n1\n",
			cfg:     CampaignConfig{{Name: "a"}},
			wantErr: new(*ParseError),
		},
		{
			name:    "validation error",
			input:   "a,b\n1,2\n",
			cfg:     CampaignConfig{{Name: "z"}},
			wantErr: new(*ValidationError),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, err := TransformCSV([]byte(tt.input), tt.cfg)
			if tt.wantErr != nil {
				if !errors.As(err, tt.wantErr) {
					t.Fatalf("error = %v, want %T", err, tt.wantErr)
				}
				if got != nil {
					t.Error("expected no output on error")
				}
				return
			}
			if err != nil {
				t.Fatalf("TransformCSV() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTransformCSV_Idempotent(t *testing.T) {
	cfg := CampaignConfig{{Name: "a", Rules: []Rule{{Type: RuleUppercase}}}, {Name: "b"}}

	first, _, err := TransformCSV([]byte("b,a\n1,x\n2,y\n"), cfg)
	if err != nil {
		t.Fatalf("first pass error = %v", err)
	}
	second, _, err := TransformCSV(first, cfg)
	if err != nil {
		t.Fatalf("second pass error = %v", err)
	}
	if string(first) != string(second) {
		t.Errorf("not idempotent: %q vs %q", first, second)
	}
}
