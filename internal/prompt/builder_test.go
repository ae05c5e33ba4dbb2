package prompt

import (
	"strings"
	"testing"

	"thoughtcap/internal/models"
)

func TestBuild_SubstitutesPlaceholders(t *testing.T) {
	template := "BG: {user_background}\nRECENT: {recent_items}\nINPUT: {verbatim_input}"
	items := []models.Item{
		{ItemType: models.ItemTypeFilm, Title: "Dune"},
		{ItemType: models.ItemTypeBook, Title: "Il Nome della Rosa"},
	}

	got := Build(template, "Mi piace la fantascienza", items, "dune parte due")

	if !strings.Contains(got, "BG: Mi piace la fantascienza") {
		t.Errorf("Background not substituted: %q", got)
	}
	if !strings.Contains(got, "1. [film] Dune") {
		t.Errorf("Recent items not rendered: %q", got)
	}
	if !strings.Contains(got, "2. [book] Il Nome della Rosa") {
		t.Errorf("Second recent item missing: %q", got)
	}
	if !strings.Contains(got, "INPUT: dune parte due") {
		t.Errorf("Verbatim input not substituted: %q", got)
	}
}

func TestBuild_EmptyTemplateUsesDefault(t *testing.T) {
	got := Build("", "", nil, "un pensiero")

	if !strings.Contains(got, "un pensiero") {
		t.Error("Default template must include the verbatim input")
	}
	if !strings.Contains(got, "Nessun background impostato") {
		t.Error("Empty background must render the explicit placeholder text")
	}
	if !strings.Contains(got, "Nessun item recente") {
		t.Error("Empty recent items must render the explicit placeholder text")
	}
	if strings.Contains(got, "{user_background}") || strings.Contains(got, "{verbatim_input}") {
		t.Error("Recognized placeholders must all be substituted")
	}
}

func TestBuild_UnrecognizedPlaceholderUntouched(t *testing.T) {
	got := Build("custom {weird_thing} with {verbatim_input}", "", nil, "x")

	if !strings.Contains(got, "{weird_thing}") {
		t.Errorf("Unrecognized placeholder must stay verbatim: %q", got)
	}
	if strings.Contains(got, "{verbatim_input}") {
		t.Errorf("Recognized placeholder must be substituted: %q", got)
	}
}

func TestBuildPicks_SubstitutesContext(t *testing.T) {
	template := "{day_of_week} {current_time}\nconsumati: {recent_consumed}, catturati: {recent_captured}\n{pending_items}"
	pc := PicksContext{
		DayOfWeek:      "venerdì",
		CurrentTime:    "08:00",
		RecentConsumed: 3,
		RecentCaptured: 12,
		Selected: []models.Item{
			{ItemType: models.ItemTypeFilm, Title: "Dune", EstimatedMinutes: 155, Priority: 4},
		},
	}

	got := BuildPicks(template, pc)

	if !strings.Contains(got, "venerdì 08:00") {
		t.Errorf("Day/time not substituted: %q", got)
	}
	if !strings.Contains(got, "consumati: 3, catturati: 12") {
		t.Errorf("Window counters not substituted: %q", got)
	}
	if !strings.Contains(got, "[film] Dune") {
		t.Errorf("Selected pool not rendered: %q", got)
	}
}

func TestRenderRecentItems_Empty(t *testing.T) {
	if got := RenderRecentItems(nil); got != "Nessun item recente" {
		t.Errorf("RenderRecentItems(nil) = %q", got)
	}
}
