package service

import (
	"context"
	"errors"
	"testing"

	"github.com/farmfed/delivery-system/internal/core/ports"
)

func completedEvent(transactionID string) ports.WebhookEvent {
	return ports.WebhookEvent{
		TriggerID: triggerTaskCompleted,
		TaskID:    "task_1",
		Metadata: []ports.TaskMetadata{
			{Name: "transactionId", Type: "string", Value: transactionID},
		},
	}
}

func TestWebhook_CompletedTaskMarksDelivered(t *testing.T) {
	m := newStubMarketplace()
	runs := &stubRunRepo{}
	svc := NewWebhookService(m, runs, discardLogger)

	if err := svc.Process(context.Background(), completedEvent("tx_1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := m.transitionsFor("tx_1")
	if len(got) != 1 || got[0] != "tx_1:"+transitionOperatorMarkDelivered {
		t.Errorf("transitions = %v, want one operator-mark-delivered", got)
	}
}

func TestWebhook_IgnoresOtherTriggers(t *testing.T) {
	m := newStubMarketplace()
	svc := NewWebhookService(m, &stubRunRepo{}, discardLogger)

	for _, trigger := range []int{0, 1, 2, 4} {
		event := completedEvent("tx_1")
		event.TriggerID = trigger
		if err := svc.Process(context.Background(), event); err != nil {
			t.Fatalf("trigger %d: unexpected error: %v", trigger, err)
		}
	}
	if len(m.transitions) != 0 {
		t.Errorf("non-completion triggers must not transition, got %v", m.transitions)
	}
}

func TestWebhook_MissingTransactionMetadata(t *testing.T) {
	m := newStubMarketplace()
	svc := NewWebhookService(m, &stubRunRepo{}, discardLogger)

	event := ports.WebhookEvent{TriggerID: triggerTaskCompleted, TaskID: "task_2"}
	if err := svc.Process(context.Background(), event); err != nil {
		t.Fatalf("unlinked task must be acknowledged, got %v", err)
	}
	if len(m.transitions) != 0 {
		t.Error("no transition without a transaction reference")
	}
}

func TestWebhook_TransitionFailureRecordedNotReturned(t *testing.T) {
	m := newStubMarketplace()
	m.transitionErr["tx_dead"] = errors.New("invalid transition")
	runs := &stubRunRepo{}
	svc := NewWebhookService(m, runs, discardLogger)

	if err := svc.Process(context.Background(), completedEvent("tx_dead")); err != nil {
		t.Fatalf("reconciliation failure must still acknowledge, got %v", err)
	}
	if len(runs.failures) != 1 {
		t.Fatalf("failures recorded = %d, want 1", len(runs.failures))
	}
	failure := runs.failures[0]
	if failure.TransactionID != "tx_dead" || failure.TaskID != "task_1" {
		t.Errorf("failure record wrong: %+v", failure)
	}
	if failure.Reason == "" || failure.OccurredAt.IsZero() {
		t.Errorf("failure record incomplete: %+v", failure)
	}
}
