package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"wallet-ledger-go/internal/models"

	"github.com/shopspring/decimal"
)

func TestWebhookNotifier_DeliversPayload(t *testing.T) {
	var received webhookPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Expected application/json, got %s", ct)
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("Failed to read body: %v", err)
		}
		if err := json.Unmarshal(body, &received); err != nil {
			t.Fatalf("Failed to decode payload: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	notifier := NewWebhookNotifier(server.URL)
	records := []models.Transaction{
		{Id: "tx1", Type: models.TxTypeSend, Amount: decimal.NewFromInt(10), Currency: "USD", UserId: "alice"},
		{Id: "tx2", Type: models.TxTypeReceive, Amount: decimal.NewFromInt(10), Currency: "USD", UserId: "bob"},
	}

	if err := notifier.TransactionsRecorded(context.Background(), records); err != nil {
		t.Fatalf("TransactionsRecorded failed: %v", err)
	}

	if received.Event != "transactions.recorded" {
		t.Errorf("Expected event transactions.recorded, got %s", received.Event)
	}
	if len(received.Transactions) != 2 {
		t.Errorf("Expected 2 transactions in payload, got %d", len(received.Transactions))
	}
}

func TestWebhookNotifier_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	notifier := NewWebhookNotifier(server.URL)
	err := notifier.TransactionsRecorded(context.Background(), []models.Transaction{{Id: "tx1"}})
	if err == nil {
		t.Error("Expected error for 500 response")
	}
}

func TestWebhookNotifier_UnreachableEndpoint(t *testing.T) {
	notifier := NewWebhookNotifier("http://127.0.0.1:1")
	err := notifier.TransactionsRecorded(context.Background(), []models.Transaction{{Id: "tx1"}})
	if err == nil {
		t.Error("Expected error for unreachable endpoint")
	}
}
