// Package core provides the business logic for reorganizing CSV files.
//
// This package holds the transformation engine and the campaign service,
// independent of any transport. It is used by the HTTP server, the
// reorganize CLI and tests without modification.
//
// # Architecture
//
//   - Table: an in-memory set of named text or numeric columns, built by
//     [Parse] and serialized by [Table.WriteCSV].
//   - Rules: per-column transformations ([ApplyRule]) that never fail;
//     unusable rule values leave the column unchanged.
//   - Transform: validates that every configured column exists, runs each
//     column's rules in order and keeps only the configured columns, in
//     configured order.
//   - Service: campaign CRUD and file processing behind an [UploadLimiter].
//
// # Transformation
//
//	cfg := core.CampaignConfig{
//	    {Name: "Email", Rules: []core.Rule{{Type: core.RuleLowercase}}},
//	    {Name: "Amount", Rules: []core.Rule{{Type: core.RuleMultiplyBy, Value: core.StringValue("100")}}},
//	}
//	out, stats, err := core.TransformCSV(raw, cfg)
//
// A missing column yields a [*ValidationError] listing every absent name.
// Malformed input yields a [*ParseError] carrying the row and line.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - VAL001: missing columns
//   - FILE001-FILE006: file errors (size, format, encoding, type)
//   - CMP001-CMP003: campaign errors (not found, duplicate, invalid)
//   - UPL002-UPL005: processing errors (busy, cancelled, timeout)
//   - DB004-DB006: database errors
package core
