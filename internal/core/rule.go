package core

// rule.go implements the column rule vocabulary.
//
// A rule maps one column to a new column of the same length. Rules never fail:
// a rule whose value cannot be used, or whose kind is unknown, leaves the
// column unchanged and reports that it was skipped.

import (
	"encoding"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// RuleKind identifies a column transformation.
type RuleKind string

const (
	RuleUppercase   RuleKind = "UPPERCASE"
	RuleLowercase   RuleKind = "LOWERCASE"
	RuleAddPrefix   RuleKind = "ADD_PREFIX"
	RuleAddSuffix   RuleKind = "ADD_SUFFIX"
	RuleReplaceText RuleKind = "REPLACE_TEXT"
	RuleMultiplyBy  RuleKind = "MULTIPLY_BY"
)

// ruleAliases maps alternate tags stored by older campaign definitions.
var ruleAliases = map[string]RuleKind{
	"TO_UPPERCASE": RuleUppercase,
	"TO_LOWERCASE": RuleLowercase,
}

var _ encoding.TextUnmarshaler = (*RuleKind)(nil)

// ParseRuleKind resolves a rule tag. Tags match exactly; case and spacing
// variants are unknown kinds and are returned as-is.
func ParseRuleKind(s string) RuleKind {
	if k, ok := ruleAliases[s]; ok {
		return k
	}
	return RuleKind(s)
}

// UnmarshalText decodes a rule tag, resolving aliases.
func (k *RuleKind) UnmarshalText(text []byte) error {
	*k = ParseRuleKind(string(text))
	return nil
}

// Known reports whether the kind is part of the rule vocabulary.
func (k RuleKind) Known() bool {
	switch k {
	case RuleUppercase, RuleLowercase, RuleAddPrefix, RuleAddSuffix, RuleReplaceText, RuleMultiplyBy:
		return true
	}
	return false
}

// Rule is one transformation step applied to a column.
type Rule struct {
	ID    string   `json:"id,omitempty" yaml:"id,omitempty"`
	Type  RuleKind `json:"type" yaml:"type"`
	Value Value    `json:"value" yaml:"value,omitempty"`
}

// ApplyRule applies r to col and returns the resulting column.
// The bool is false when the rule was skipped (unusable value or unknown kind);
// the returned column is then col unchanged.
func ApplyRule(col Column, r Rule) (Column, bool) {
	switch r.Type {
	case RuleUppercase:
		return mapText(col, cases.Upper(language.Und).String), true
	case RuleLowercase:
		return mapText(col, cases.Lower(language.Und).String), true
	case RuleAddPrefix:
		prefix, ok := r.Value.Text()
		if !ok {
			return col, false
		}
		return mapText(col, func(s string) string { return prefix + s }), true
	case RuleAddSuffix:
		suffix, ok := r.Value.Text()
		if !ok {
			return col, false
		}
		return mapText(col, func(s string) string { return s + suffix }), true
	case RuleReplaceText:
		return replaceText(col, r.Value)
	case RuleMultiplyBy:
		return multiplyBy(col, r.Value)
	default:
		return col, false
	}
}

// mapText coerces col to text and applies fn to every cell.
func mapText(col Column, fn func(string) string) Column {
	cells := col.Texts()
	for i, s := range cells {
		cells[i] = fn(s)
	}
	return Column{Name: col.Name, kind: TextKind, text: cells}
}

// replaceText expects "<old>,<new>" split on the first comma and replaces
// every literal occurrence of old.
func replaceText(col Column, v Value) (Column, bool) {
	if v.kind != valueString {
		return col, false
	}
	old, repl, ok := strings.Cut(v.str, ",")
	if !ok {
		return col, false
	}
	return mapText(col, func(s string) string { return strings.ReplaceAll(s, old, repl) }), true
}

// multiplyBy coerces col to numbers and scales every numeric cell.
// Cells that are not numbers stay NaN.
func multiplyBy(col Column, v Value) (Column, bool) {
	factor, ok := v.Float()
	if !ok {
		return col, false
	}
	out := col.AsNumeric()
	for i := range out.nums {
		out.nums[i] *= factor
	}
	return out, true
}
