package domain

import (
	"testing"
)

func TestGenerateID(t *testing.T) {
	id1 := GenerateID()
	id2 := GenerateID()

	if id1 == "" || id2 == "" {
		t.Error("expected non-empty IDs")
	}
	if id1 == id2 {
		t.Error("expected unique IDs")
	}
	// Base64 URL encoding of 16 bytes = 22 chars
	if len(id1) != 22 {
		t.Errorf("expected ID length 22, got %d", len(id1))
	}
}

func TestNewTask(t *testing.T) {
	task := NewTask(TaskTypeScanPipeline, map[string]string{"target": "https://example.com"})

	if task.ID == "" {
		t.Error("expected non-empty ID")
	}
	if task.Type != TaskTypeScanPipeline {
		t.Errorf("expected type %s, got %s", TaskTypeScanPipeline, task.Type)
	}
	if task.Target() != "https://example.com" {
		t.Errorf("expected target from payload, got %s", task.Target())
	}
	if task.Status != TaskStatusPending {
		t.Errorf("expected status %s, got %s", TaskStatusPending, task.Status)
	}
	if task.Attempts != 0 {
		t.Errorf("expected attempts 0, got %d", task.Attempts)
	}
	if task.MaxAttempts != 3 {
		t.Errorf("expected max attempts 3, got %d", task.MaxAttempts)
	}
	if task.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestNewTask_NilPayload(t *testing.T) {
	task := NewTask(TaskTypeRebuildIndex, nil)

	if task.Payload == nil {
		t.Error("expected an empty payload map")
	}
	if task.Target() != "" {
		t.Errorf("expected no target, got %s", task.Target())
	}
}

func TestTask_Lifecycle(t *testing.T) {
	task := NewTask(TaskTypeRebuildIndex, nil)

	task.MarkProcessing()
	if task.Status != TaskStatusProcessing {
		t.Errorf("expected processing, got %s", task.Status)
	}
	if task.Attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", task.Attempts)
	}
	if task.StartedAt == nil {
		t.Error("expected StartedAt set")
	}

	task.MarkCompleted()
	if task.Status != TaskStatusCompleted {
		t.Errorf("expected completed, got %s", task.Status)
	}
	if task.CompletedAt == nil {
		t.Error("expected CompletedAt set")
	}
}

func TestTask_RetryFlow(t *testing.T) {
	task := NewTask(TaskTypeRebuildIndex, nil)

	task.MarkProcessing()
	if !task.CanRetry() {
		t.Error("expected retries left after first attempt")
	}

	task.Retry("embedding timeout")
	if task.Status != TaskStatusPending {
		t.Errorf("expected pending after retry, got %s", task.Status)
	}
	if task.Error != "embedding timeout" {
		t.Errorf("expected failure reason recorded, got %q", task.Error)
	}
	if task.StartedAt != nil {
		t.Error("expected StartedAt cleared on retry")
	}

	task.MarkProcessing()
	task.MarkProcessing()
	if task.CanRetry() {
		t.Errorf("expected no retries left at %d attempts", task.Attempts)
	}

	task.MarkFailed("gave up")
	if task.Status != TaskStatusFailed {
		t.Errorf("expected failed, got %s", task.Status)
	}
	if task.Error != "gave up" {
		t.Errorf("expected final reason, got %q", task.Error)
	}
}
