package services

import (
	"testing"
	"time"

	"thoughtcap/internal/models"
)

func TestTransitionChange(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	t.Run("consumed sets consumedAt and clears archivedAt", func(t *testing.T) {
		set, unset := transitionChange(StatusUpdate{NewStatus: models.StatusConsumed}, now)
		if set["status"] != models.StatusConsumed {
			t.Errorf("Expected status consumed, got %v", set["status"])
		}
		if set["consumedAt"] != now {
			t.Errorf("Expected consumedAt=%s, got %v", now, set["consumedAt"])
		}
		if _, ok := unset["archivedAt"]; !ok {
			t.Error("archivedAt must be cleared when entering consumed")
		}
	})

	t.Run("archived sets archivedAt and clears consumedAt", func(t *testing.T) {
		set, unset := transitionChange(StatusUpdate{NewStatus: models.StatusArchived}, now)
		if set["archivedAt"] != now {
			t.Errorf("Expected archivedAt=%s, got %v", now, set["archivedAt"])
		}
		if _, ok := unset["consumedAt"]; !ok {
			t.Error("consumedAt must be cleared when entering archived")
		}
	})

	t.Run("pending clears both timestamps", func(t *testing.T) {
		set, unset := transitionChange(StatusUpdate{NewStatus: models.StatusPending}, now)
		if _, ok := set["consumedAt"]; ok {
			t.Error("Restore must not set consumedAt")
		}
		if _, ok := unset["consumedAt"]; !ok {
			t.Error("Restore must clear consumedAt")
		}
		if _, ok := unset["archivedAt"]; !ok {
			t.Error("Restore must clear archivedAt")
		}
	})

	t.Run("feedback and notes ride along with the transition", func(t *testing.T) {
		set, _ := transitionChange(StatusUpdate{
			NewStatus: models.StatusConsumed,
			Feedback:  models.FeedbackLoved,
			Notes:     "rivisto con amici",
		}, now)
		if set["consumptionFeedback"] != models.FeedbackLoved {
			t.Errorf("Expected feedback in the update, got %v", set["consumptionFeedback"])
		}
		if set["notes"] != "rivisto con amici" {
			t.Errorf("Expected notes in the update, got %v", set["notes"])
		}
	})
}

func TestAnnotationSet(t *testing.T) {
	t.Run("feedback only", func(t *testing.T) {
		set := annotationSet(StatusUpdate{Feedback: models.FeedbackMeh})
		if len(set) != 1 || set["consumptionFeedback"] != models.FeedbackMeh {
			t.Errorf("Unexpected set document: %v", set)
		}
	})

	t.Run("notes only", func(t *testing.T) {
		set := annotationSet(StatusUpdate{Notes: "da rileggere"})
		if len(set) != 1 || set["notes"] != "da rileggere" {
			t.Errorf("Unexpected set document: %v", set)
		}
	})

	t.Run("annotations never touch status or timestamps", func(t *testing.T) {
		set := annotationSet(StatusUpdate{Feedback: models.FeedbackLoved, Notes: "x"})
		for _, forbidden := range []string{"status", "consumedAt", "archivedAt"} {
			if _, ok := set[forbidden]; ok {
				t.Errorf("Annotation update must not contain %q", forbidden)
			}
		}
	})

	t.Run("empty update yields empty document", func(t *testing.T) {
		if set := annotationSet(StatusUpdate{}); len(set) != 0 {
			t.Errorf("Expected empty set document, got %v", set)
		}
	})
}
