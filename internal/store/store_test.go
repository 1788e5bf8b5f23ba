package store

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/tmc/langchaingo/llms"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var seedYAML = []byte(`
templates:
  - id: tpl-name
    title: Pick a name
    category: ideation
    phase: ideation
    priority: high
  - id: tpl-llc
    title: File LLC articles
    category: legal
    phase: legal
    priority: high
  - id: tpl-bank
    title: Open a bank account
    category: financial
    phase: financial
    priority: low
`)

func seed(t *testing.T, s *Store) {
	t.Helper()
	templates, err := ParseTemplates(seedYAML)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.UpsertTemplates(context.Background(), templates); err != nil {
		t.Fatal(err)
	}
}

func TestListTemplates(t *testing.T) {
	s := newTestStore(t)
	seed(t, s)
	ctx := context.Background()

	all, err := s.ListTemplates(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 templates, got %d", len(all))
	}
	if all[0].ID != "tpl-name" || all[2].ID != "tpl-bank" {
		t.Errorf("templates not in sort order: %v", all)
	}

	legal, err := s.ListTemplates(ctx, "legal")
	if err != nil {
		t.Fatal(err)
	}
	if len(legal) != 1 || legal[0].ID != "tpl-llc" {
		t.Errorf("unexpected legal templates: %v", legal)
	}
}

func TestUpsertBusiness_UpdatesByOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.UpsertBusiness(ctx, Business{OwnerID: "u1", Name: "Acme", Category: "service", StateCode: "CA", Stage: "idea"})
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.UpsertBusiness(ctx, Business{OwnerID: "u1", Name: "Acme Labs", Category: "product", StateCode: "DE", Stage: "launch"})
	if err != nil {
		t.Fatal(err)
	}
	if first.ID != second.ID {
		t.Errorf("expected same business id, got %s and %s", first.ID, second.ID)
	}

	var name string
	if err := s.DB.QueryRow(`SELECT name FROM businesses WHERE owner_id = 'u1'`).Scan(&name); err != nil {
		t.Fatal(err)
	}
	if name != "Acme Labs" {
		t.Errorf("expected updated name, got %q", name)
	}

	if _, err := s.UpsertBusiness(ctx, Business{OwnerID: "u2"}); err == nil {
		t.Error("expected error for business without name")
	}
}

func TestCreateTasks(t *testing.T) {
	s := newTestStore(t)
	seed(t, s)
	ctx := context.Background()

	tasks, err := s.CreateTasks(ctx, "u1", "b1", []string{"tpl-bank", "missing", "tpl-name", "tpl-bank"})
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	if tasks[0].TemplateID != "tpl-bank" || tasks[1].TemplateID != "tpl-name" {
		t.Errorf("tasks not in request order: %+v", tasks)
	}
	if tasks[1].Priority != "high" || tasks[1].Status != "pending" {
		t.Errorf("unexpected task fields: %+v", tasks[1])
	}

	listed, err := s.ListTasks(ctx, "b1")
	if err != nil {
		t.Fatal(err)
	}
	if len(listed) != 2 || listed[0].ID != tasks[0].ID {
		t.Errorf("ListTasks mismatch: %+v", listed)
	}
}

func TestUpsertBusinessPlan(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	plan := BusinessPlan{
		OwnerID:               "u1",
		BusinessID:            "b1",
		PlanSummary:           "Start small",
		RecommendedEntityType: "LLC",
		RecommendedState:      "CA",
		ExecutiveSummary:      json.RawMessage(`{"overview":"x"}`),
		ConfidenceScore:       70,
		LegalScore:            80,
	}
	first, err := s.UpsertBusinessPlan(ctx, plan)
	if err != nil {
		t.Fatal(err)
	}

	plan.PlanSummary = "Grow fast"
	plan.ConfidenceScore = 90
	second, err := s.UpsertBusinessPlan(ctx, plan)
	if err != nil {
		t.Fatal(err)
	}
	if first.ID != second.ID {
		t.Errorf("expected same plan id")
	}

	got, err := s.GetBusinessPlan(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if got.PlanSummary != "Grow fast" || got.ConfidenceScore != 90 || got.BusinessID != "b1" {
		t.Errorf("unexpected plan: %+v", got)
	}
	if string(got.ExecutiveSummary) != `{"overview":"x"}` {
		t.Errorf("unexpected executive summary %s", got.ExecutiveSummary)
	}
	if got.PhaseRecommendations != nil {
		t.Errorf("expected nil phase recommendations, got %s", got.PhaseRecommendations)
	}
}

func TestHistory(t *testing.T) {
	s := newTestStore(t)

	for _, m := range [][2]string{{"human", "one"}, {"ai", "two"}, {"human", "three"}} {
		if err := s.AddMessage("sess", m[0], m[1]); err != nil {
			t.Fatal(err)
		}
	}

	history, err := s.GetHistory("sess", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(history))
	}
	if tc, ok := history[1].Parts[0].(llms.TextContent); !ok || tc.Text != "three" {
		t.Errorf("expected last message to be 'three'")
	}
}

func TestSeedTemplates_ShippedFile(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	n, err := s.SeedTemplates(ctx, filepath.Join("..", "..", "configs", "templates.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	templates, err := s.ListTemplates(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if n == 0 || len(templates) != n {
		t.Fatalf("seeded %d templates, listed %d", n, len(templates))
	}
	for _, tpl := range templates {
		if tpl.Phase == "" || tpl.Priority == "" {
			t.Errorf("template %s is missing phase or priority", tpl.ID)
		}
	}

	// Seeding twice updates in place.
	if _, err := s.SeedTemplates(ctx, filepath.Join("..", "..", "configs", "templates.yaml")); err != nil {
		t.Fatal(err)
	}
	again, _ := s.ListTemplates(ctx, "")
	if len(again) != n {
		t.Errorf("expected %d templates after reseed, got %d", n, len(again))
	}
}
