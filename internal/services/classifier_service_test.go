package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"thoughtcap/internal/models"
)

// fakeCaptureStore records inserts in memory.
type fakeCaptureStore struct {
	inserted  []*models.Item
	insertErr error
	recent    []models.Item
	config    map[string]string
}

func (f *fakeCaptureStore) Insert(ctx context.Context, item *models.Item) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, item)
	return nil
}

func (f *fakeCaptureStore) RecentItems(ctx context.Context, userID string, limit int64) ([]models.Item, error) {
	return f.recent, nil
}

func (f *fakeCaptureStore) GetConfig(ctx context.Context, userID, key, def string) string {
	if v, ok := f.config[key]; ok {
		return v
	}
	return def
}

// fakeClassifyGateway returns a scripted classification or error.
type fakeClassifyGateway struct {
	result     *models.Classification
	err        error
	vision     bool
	lastPrompt string
}

func (f *fakeClassifyGateway) Classify(ctx context.Context, prompt string, image []byte, imageMIME string) (*models.Classification, error) {
	f.lastPrompt = prompt
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeClassifyGateway) SupportsVision() bool { return f.vision }

func textEvent(text string) *models.CaptureEvent {
	return &models.CaptureEvent{
		UserID:     "user-1",
		Text:       text,
		ReceivedAt: time.Now().UTC(),
	}
}

func TestCapture_SuccessfulClassification(t *testing.T) {
	store := &fakeCaptureStore{}
	gateway := &fakeClassifyGateway{
		result: &models.Classification{
			Type:             models.ItemTypeFilm,
			Title:            "Dune: Part Two",
			Description:      "Secondo capitolo della saga",
			EstimatedMinutes: 166,
			Priority:         4,
			Tags:             []string{"sci-fi"},
		},
	}
	service := NewClassifierService(store, gateway)

	item, err := service.Capture(context.Background(), textEvent("film dune parte 2"))
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}

	if item.Status != models.StatusPending {
		t.Errorf("Expected pending status, got %q", item.Status)
	}
	if item.ItemType != models.ItemTypeFilm {
		t.Errorf("Expected film, got %q", item.ItemType)
	}
	if item.VerbatimInput != "film dune parte 2" {
		t.Errorf("Verbatim input must be preserved, got %q", item.VerbatimInput)
	}
	if item.EnrichmentFailed {
		t.Error("Successful classification must not be flagged as failed")
	}
	if len(store.inserted) != 1 {
		t.Fatalf("Expected 1 insert, got %d", len(store.inserted))
	}
}

func TestCapture_ClassificationFailureStoresDegradedItem(t *testing.T) {
	store := &fakeCaptureStore{}
	gateway := &fakeClassifyGateway{err: errors.New("all providers exhausted")}
	service := NewClassifierService(store, gateway)

	input := "quel concetto di cui parlava il podcast stamattina, molto interessante da approfondire"
	item, err := service.Capture(context.Background(), textEvent(input))
	if err != nil {
		t.Fatalf("Capture must not fail when classification fails: %v", err)
	}

	if !item.EnrichmentFailed {
		t.Error("Degraded item must be flagged enrichment_failed")
	}
	if item.ItemType != models.ItemTypeOther {
		t.Errorf("Expected type other, got %q", item.ItemType)
	}
	if item.VerbatimInput != input {
		t.Error("Raw input must survive the degraded path")
	}
	if !strings.HasSuffix(item.Title, "...") {
		t.Errorf("Fallback title must be a truncated prefix, got %q", item.Title)
	}
	if len([]rune(item.Title)) != 53 {
		t.Errorf("Fallback title must be 50 runes plus ellipsis, got %d runes", len([]rune(item.Title)))
	}
	if len(item.Tags) != 1 || item.Tags[0] != "uncategorized" {
		t.Errorf("Expected the uncategorized tag, got %v", item.Tags)
	}
	if item.Status != models.StatusPending {
		t.Errorf("Degraded items still enter the pending pool, got %q", item.Status)
	}
}

func TestCapture_StorageFailurePropagates(t *testing.T) {
	store := &fakeCaptureStore{insertErr: errors.New("mongo down")}
	gateway := &fakeClassifyGateway{err: errors.New("llm down")}
	service := NewClassifierService(store, gateway)

	if _, err := service.Capture(context.Background(), textEvent("pensiero")); err == nil {
		t.Fatal("Storage failure is the one case that must surface to the caller")
	}
}

func TestCapture_ImageWithoutVisionProviderDegrades(t *testing.T) {
	store := &fakeCaptureStore{}
	gateway := &fakeClassifyGateway{vision: false}
	service := NewClassifierService(store, gateway)

	event := &models.CaptureEvent{
		UserID:    "user-1",
		Image:     []byte{0xFF, 0xD8},
		ImageMIME: "image/jpeg",
		Caption:   "street art vicino casa",
	}

	item, err := service.Capture(context.Background(), event)
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if !item.EnrichmentFailed {
		t.Error("Image capture without vision support must store degraded")
	}
	if item.VerbatimInput != "street art vicino casa" {
		t.Errorf("Caption should become the verbatim input, got %q", item.VerbatimInput)
	}
}

func TestCapture_ImageWithoutCaption(t *testing.T) {
	store := &fakeCaptureStore{}
	gateway := &fakeClassifyGateway{vision: false}
	service := NewClassifierService(store, gateway)

	event := &models.CaptureEvent{
		UserID: "user-1",
		Image:  []byte{0xFF, 0xD8},
	}

	item, err := service.Capture(context.Background(), event)
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if item.VerbatimInput != "immagine" {
		t.Errorf("Expected the image placeholder input, got %q", item.VerbatimInput)
	}
}

func TestCapture_EmptyEventRejected(t *testing.T) {
	store := &fakeCaptureStore{}
	gateway := &fakeClassifyGateway{}
	service := NewClassifierService(store, gateway)

	if _, err := service.Capture(context.Background(), textEvent("   ")); err == nil {
		t.Fatal("Expected an error for an empty capture event")
	}
	if len(store.inserted) != 0 {
		t.Error("Nothing should be stored for an empty event")
	}
}

func TestCapture_MissingTitleFallsBackToPrefix(t *testing.T) {
	store := &fakeCaptureStore{}
	gateway := &fakeClassifyGateway{
		result: &models.Classification{Type: models.ItemTypeConcept},
	}
	service := NewClassifierService(store, gateway)

	item, err := service.Capture(context.Background(), textEvent("entropia e informazione"))
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if item.Title != "entropia e informazione" {
		t.Errorf("Expected verbatim-derived title, got %q", item.Title)
	}
}

func TestCapture_CustomTemplateAndBackgroundReachPrompt(t *testing.T) {
	store := &fakeCaptureStore{
		config: map[string]string{
			models.ConfigKeyUserBackground: "Appassionato di jazz",
			models.ConfigKeyClassifyPrompt: "BG={user_background} IN={verbatim_input}",
		},
	}
	gateway := &fakeClassifyGateway{
		result: &models.Classification{Type: models.ItemTypeMusic, Title: "Kind of Blue"},
	}
	service := NewClassifierService(store, gateway)

	if _, err := service.Capture(context.Background(), textEvent("kind of blue")); err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if !strings.Contains(gateway.lastPrompt, "BG=Appassionato di jazz") {
		t.Errorf("Custom background must reach the prompt, got %q", gateway.lastPrompt)
	}
	if !strings.Contains(gateway.lastPrompt, "IN=kind of blue") {
		t.Errorf("Custom template must be used, got %q", gateway.lastPrompt)
	}
}

func TestTruncateTitle(t *testing.T) {
	short := "breve"
	if got := TruncateTitle(short); got != short {
		t.Errorf("Short input must pass through, got %q", got)
	}

	long := strings.Repeat("à", 80)
	got := TruncateTitle(long)
	if len([]rune(got)) != 53 {
		t.Errorf("Expected 50 runes plus ellipsis, got %d runes", len([]rune(got)))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("Expected ellipsis suffix, got %q", got)
	}
}
