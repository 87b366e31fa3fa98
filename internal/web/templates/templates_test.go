package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/reorganizer/internal/core"
	"github.com/google/uuid"
)

func TestErrorAlert_Escapes(t *testing.T) {
	var buf bytes.Buffer
	if err := ErrorAlert("<b>bad</b>", "retry & wait", "FILE002").Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	out := buf.String()
	if strings.Contains(out, "<b>") {
		t.Errorf("message not escaped: %s", out)
	}
	if !strings.Contains(out, "retry &amp; wait") {
		t.Errorf("action missing or unescaped: %s", out)
	}
	if !strings.Contains(out, "Code: FILE002") {
		t.Errorf("code missing: %s", out)
	}
}

func TestCampaignsPage(t *testing.T) {
	campaigns := []core.Campaign{{
		ID:   uuid.New(),
		Name: "Leads",
		Fields: []core.Field{
			{Name: "Email", Order: 2, Rules: []core.Rule{{Type: core.RuleLowercase}}},
			{Name: "Name", Order: 1},
		},
	}}

	var buf bytes.Buffer
	if err := CampaignsPage(campaigns).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"<h1>Campaigns</h1>", "Leads", "Name, Email (LOWERCASE)", "processed_{filename}"} {
		if !strings.Contains(out, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestCampaignList_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := CampaignList(nil).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(buf.String(), "No campaigns yet") {
		t.Errorf("unexpected output: %s", buf.String())
	}
}

func TestCampaignList_RowAttributes(t *testing.T) {
	id := uuid.MustParse("6f1c2a9e-4b7d-4c1e-9a3f-2d5e8b0c7a11")
	campaigns := []core.Campaign{{
		ID:                     id,
		Name:                   "<Leads>",
		Description:            `say "hi"`,
		OutputFilenameTemplate: "{campaign}_{date}",
		Fields:                 []core.Field{{Name: "A"}},
		UpdatedAt:              time.Date(2024, 3, 9, 14, 5, 0, 0, time.UTC),
	}}

	var buf bytes.Buffer
	if err := CampaignList(campaigns).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		`<tr id="campaign-` + id.String() + `">`,
		`title="say &#34;hi&#34;"`,
		"&lt;Leads&gt;",
		"<td>{campaign}_{date}</td>",
		"<td>2024-03-09 14:05</td>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("list missing %q in %s", want, out)
		}
	}
}
