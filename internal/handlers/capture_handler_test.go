package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"thoughtcap/internal/middleware"
	"thoughtcap/internal/models"
	"thoughtcap/internal/services"

	"github.com/gofiber/fiber/v2"
)

// captureStoreStub records classifier inserts in memory.
type captureStoreStub struct {
	inserted []*models.Item
}

func (s *captureStoreStub) Insert(ctx context.Context, item *models.Item) error {
	s.inserted = append(s.inserted, item)
	return nil
}

func (s *captureStoreStub) RecentItems(ctx context.Context, userID string, limit int64) ([]models.Item, error) {
	return nil, nil
}

func (s *captureStoreStub) GetConfig(ctx context.Context, userID, key, def string) string {
	return def
}

// captureGatewayStub returns a scripted classification.
type captureGatewayStub struct {
	result    *models.Classification
	vision    bool
	called    bool
	lastImage []byte
}

func (g *captureGatewayStub) Classify(ctx context.Context, prompt string, image []byte, imageMIME string) (*models.Classification, error) {
	g.called = true
	g.lastImage = image
	return g.result, nil
}

func (g *captureGatewayStub) SupportsVision() bool { return g.vision }

func captureApp(store *captureStoreStub, gateway *captureGatewayStub) *fiber.App {
	handler := NewCaptureHandler(services.NewClassifierService(store, gateway))
	app := fiber.New()
	app.Use(middleware.Identity())
	app.Post("/api/capture", handler.Capture)
	return app
}

func TestCapture_JSONImagePayload(t *testing.T) {
	store := &captureStoreStub{}
	gateway := &captureGatewayStub{
		vision: true,
		result: &models.Classification{Type: models.ItemTypeArt, Title: "Street art"},
	}
	app := captureApp(store, gateway)

	image := []byte{0xFF, 0xD8, 0xFF, 0xE0}
	body, _ := json.Marshal(map[string]string{
		"image":      base64.StdEncoding.EncodeToString(image),
		"image_mime": "image/jpeg",
		"caption":    "street art vicino casa",
	})

	req := httptest.NewRequest("POST", "/api/capture", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "user-1")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("Expected 201, got %d", resp.StatusCode)
	}
	if !gateway.called {
		t.Fatal("Gateway must be invoked for a JSON image capture")
	}
	if !bytes.Equal(gateway.lastImage, image) {
		t.Errorf("Image bytes must reach the gateway decoded, got %v", gateway.lastImage)
	}
	if len(store.inserted) != 1 {
		t.Fatalf("Expected 1 stored item, got %d", len(store.inserted))
	}
	if store.inserted[0].ItemType != models.ItemTypeArt {
		t.Errorf("Expected art item, got %q", store.inserted[0].ItemType)
	}
}

func TestCapture_JSONTextPayload(t *testing.T) {
	store := &captureStoreStub{}
	gateway := &captureGatewayStub{
		result: &models.Classification{Type: models.ItemTypeFilm, Title: "Dune"},
	}
	app := captureApp(store, gateway)

	body, _ := json.Marshal(map[string]string{"text": "film dune parte 2"})
	req := httptest.NewRequest("POST", "/api/capture", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "user-1")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("Expected 201, got %d", resp.StatusCode)
	}
}

func TestCapture_EmptyBodyRejected(t *testing.T) {
	store := &captureStoreStub{}
	gateway := &captureGatewayStub{}
	app := captureApp(store, gateway)

	req := httptest.NewRequest("POST", "/api/capture", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "user-1")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("Expected 400 for a capture with neither text nor image, got %d", resp.StatusCode)
	}
	if len(store.inserted) != 0 {
		t.Error("Nothing should be stored for an empty capture")
	}
}
