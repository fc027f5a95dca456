package wallet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"wallet-ledger-go/internal/common"
	"wallet-ledger-go/internal/database"
	"wallet-ledger-go/internal/models"
	"wallet-ledger-go/internal/store"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

// fixedRates serves a small in-memory rate table
type fixedRates map[string]decimal.Decimal

func (r fixedRates) Rate(_ context.Context, from, to string) (decimal.Decimal, error) {
	rate, ok := r[from+"/"+to]
	if !ok {
		return decimal.Zero, fmt.Errorf("no rate for %s/%s", from, to)
	}
	return rate, nil
}

// captureNotifier records every notification it receives
type captureNotifier struct {
	batches [][]models.Transaction
}

func (n *captureNotifier) TransactionsRecorded(_ context.Context, records []models.Transaction) error {
	n.batches = append(n.batches, records)
	return nil
}

func testRates() fixedRates {
	return fixedRates{
		"BTC/ETH": decimal.NewFromFloat(14.3),
		"USD/EUR": decimal.NewFromFloat(0.85),
	}
}

func setupEngineTest(t *testing.T) (*Engine, *database.Service, *captureNotifier, func()) {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	service := database.NewServiceWithDB(db)
	if err := service.InitSchema(); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	ctx := context.Background()
	seedUsers := []struct {
		id    string
		email string
		admin bool
	}{
		{"alice", "alice@example.com", false},
		{"bob", "bob@example.com", false},
		{"root", "root@example.com", true},
	}
	for _, u := range seedUsers {
		if _, err := service.CreateUser(ctx, u.id, u.id, u.email, u.admin); err != nil {
			t.Fatalf("Failed to seed user %s: %v", u.id, err)
		}
	}

	currencies, err := common.NewCurrencyRegistry(common.DefaultCurrencies())
	if err != nil {
		t.Fatalf("Failed to build currency registry: %v", err)
	}

	notifier := &captureNotifier{}
	engine, err := NewEngine(EngineParams{
		Ledger:     service,
		Log:        service,
		Directory:  service,
		Currencies: currencies,
		Rates:      testRates(),
		Notifier:   notifier,
	})
	if err != nil {
		t.Fatalf("Failed to build engine: %v", err)
	}

	cleanup := func() {
		db.Close()
	}

	return engine, service, notifier, cleanup
}

func seedBalance(t *testing.T, service *database.Service, ownerId, currency string, amount decimal.Decimal) {
	t.Helper()
	if _, err := service.Adjust(context.Background(), store.AccountRef{OwnerId: ownerId, Currency: currency}, amount, "seed"); err != nil {
		t.Fatalf("Failed to seed balance: %v", err)
	}
}

func TestSendPayment_MovesFunds(t *testing.T) {
	engine, service, notifier, cleanup := setupEngineTest(t)
	defer cleanup()

	ctx := context.Background()
	seedBalance(t, service, "alice", "USD", decimal.NewFromInt(100))

	result, err := engine.SendPayment(ctx, Caller{Id: "alice"}, "bob", decimal.NewFromInt(30), "USD", "lunch")
	if err != nil {
		t.Fatalf("SendPayment failed: %v", err)
	}

	aliceBalance, _ := service.GetBalance(ctx, store.AccountRef{OwnerId: "alice", Currency: "USD"})
	bobBalance, _ := service.GetBalance(ctx, store.AccountRef{OwnerId: "bob", Currency: "USD"})

	if !aliceBalance.Equal(decimal.NewFromInt(70)) {
		t.Errorf("Expected alice balance 70, got %s", aliceBalance.String())
	}
	if !bobBalance.Equal(decimal.NewFromInt(30)) {
		t.Errorf("Expected bob balance 30, got %s", bobBalance.String())
	}
	// The sum across accounts never changes
	if !aliceBalance.Add(bobBalance).Equal(decimal.NewFromInt(100)) {
		t.Errorf("Funds not conserved: %s + %s", aliceBalance.String(), bobBalance.String())
	}

	if result.NewSenderBalance == nil || !result.NewSenderBalance.Equal(decimal.NewFromInt(70)) {
		t.Errorf("Unexpected sender balance in result: %+v", result.NewSenderBalance)
	}
	if result.NewRecipientBalance == nil || !result.NewRecipientBalance.Equal(decimal.NewFromInt(30)) {
		t.Errorf("Unexpected recipient balance in result: %+v", result.NewRecipientBalance)
	}

	if len(notifier.batches) != 1 || len(notifier.batches[0]) != 2 {
		t.Fatalf("Expected one notification with 2 records, got %+v", notifier.batches)
	}
}

func TestSendPayment_WritesPairedRecords(t *testing.T) {
	engine, service, _, cleanup := setupEngineTest(t)
	defer cleanup()

	ctx := context.Background()
	seedBalance(t, service, "alice", "USD", decimal.NewFromInt(50))

	if _, err := engine.SendPayment(ctx, Caller{Id: "alice"}, "bob", decimal.NewFromInt(20), "USD", ""); err != nil {
		t.Fatalf("SendPayment failed: %v", err)
	}

	aliceHistory, err := service.Query(ctx, "alice", 10, 0)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	var sendRow, receiveRow *models.Transaction
	for i := range aliceHistory {
		switch aliceHistory[i].Type {
		case models.TxTypeSend:
			sendRow = &aliceHistory[i]
		case models.TxTypeReceive:
			receiveRow = &aliceHistory[i]
		}
	}
	if sendRow == nil || receiveRow == nil {
		t.Fatalf("Expected send and receive rows, got %+v", aliceHistory)
	}

	// The pair differs only in type and filing owner
	if sendRow.UserId != "alice" || receiveRow.UserId != "bob" {
		t.Errorf("Rows filed under wrong owners: %s / %s", sendRow.UserId, receiveRow.UserId)
	}
	if sendRow.SenderId != receiveRow.SenderId || sendRow.RecipientId != receiveRow.RecipientId {
		t.Error("Paired rows disagree on counterparties")
	}
	if !sendRow.Amount.Equal(receiveRow.Amount) {
		t.Errorf("Paired rows disagree on amount: %s vs %s", sendRow.Amount.String(), receiveRow.Amount.String())
	}
	if sendRow.Description != "Payment sent" || receiveRow.Description != "Payment received" {
		t.Errorf("Unexpected default descriptions: %q / %q", sendRow.Description, receiveRow.Description)
	}
}

func TestSendPayment_InsufficientFunds(t *testing.T) {
	engine, service, _, cleanup := setupEngineTest(t)
	defer cleanup()

	ctx := context.Background()
	seedBalance(t, service, "alice", "USD", decimal.NewFromInt(5))

	_, err := engine.SendPayment(ctx, Caller{Id: "alice"}, "bob", decimal.NewFromInt(10), "USD", "")
	if !errors.Is(err, store.ErrInsufficientFunds) {
		t.Fatalf("Expected ErrInsufficientFunds, got %v", err)
	}

	// Nothing moved, nothing logged
	aliceBalance, _ := service.GetBalance(ctx, store.AccountRef{OwnerId: "alice", Currency: "USD"})
	if !aliceBalance.Equal(decimal.NewFromInt(5)) {
		t.Errorf("Expected alice balance unchanged at 5, got %s", aliceBalance.String())
	}
	history, _ := service.Query(ctx, "bob", 10, 0)
	if len(history) != 0 {
		t.Errorf("Expected no transaction records, got %d", len(history))
	}
}

func TestSendPayment_SelfTransfer(t *testing.T) {
	engine, service, _, cleanup := setupEngineTest(t)
	defer cleanup()

	seedBalance(t, service, "alice", "USD", decimal.NewFromInt(10))

	_, err := engine.SendPayment(context.Background(), Caller{Id: "alice"}, "alice", decimal.NewFromInt(1), "USD", "")
	if !errors.Is(err, ErrInvalidRecipient) {
		t.Errorf("Expected ErrInvalidRecipient, got %v", err)
	}
}

func TestSendPayment_UnknownRecipient(t *testing.T) {
	engine, _, _, cleanup := setupEngineTest(t)
	defer cleanup()

	_, err := engine.SendPayment(context.Background(), Caller{Id: "alice"}, "nobody", decimal.NewFromInt(1), "USD", "")
	if !errors.Is(err, ErrRecipientNotFound) {
		t.Errorf("Expected ErrRecipientNotFound, got %v", err)
	}
}

func TestSendPayment_InvalidAmount(t *testing.T) {
	engine, _, _, cleanup := setupEngineTest(t)
	defer cleanup()

	_, err := engine.SendPayment(context.Background(), Caller{Id: "alice"}, "bob", decimal.NewFromInt(-5), "USD", "")
	if !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("Expected ErrInvalidAmount, got %v", err)
	}
}

func TestSendPayment_UnsupportedCurrency(t *testing.T) {
	engine, _, _, cleanup := setupEngineTest(t)
	defer cleanup()

	_, err := engine.SendPayment(context.Background(), Caller{Id: "alice"}, "bob", decimal.NewFromInt(1), "XYZ", "")
	if !errors.Is(err, ErrUnsupportedCurrency) {
		t.Errorf("Expected ErrUnsupportedCurrency, got %v", err)
	}
}

func TestAdminDeposit_RequiresAdmin(t *testing.T) {
	engine, _, _, cleanup := setupEngineTest(t)
	defer cleanup()

	_, err := engine.AdminDeposit(context.Background(), Caller{Id: "alice"}, "bob", decimal.NewFromInt(10), "USD", "")
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized, got %v", err)
	}
}

func TestAdminDeposit_CreditsUser(t *testing.T) {
	engine, service, _, cleanup := setupEngineTest(t)
	defer cleanup()

	ctx := context.Background()

	result, err := engine.AdminDeposit(ctx, Caller{Id: "root", Admin: true}, "bob", decimal.NewFromInt(500), "USD", "signup bonus")
	if err != nil {
		t.Fatalf("AdminDeposit failed: %v", err)
	}

	bobBalance, _ := service.GetBalance(ctx, store.AccountRef{OwnerId: "bob", Currency: "USD"})
	if !bobBalance.Equal(decimal.NewFromInt(500)) {
		t.Errorf("Expected balance 500, got %s", bobBalance.String())
	}
	if result.NewSenderBalance != nil {
		t.Error("Deposit has no sender side, expected nil sender balance")
	}

	// A deposit writes exactly one record
	history, _ := service.Query(ctx, "bob", 10, 0)
	if len(history) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(history))
	}
	if history[0].Type != models.TxTypeAdminDeposit {
		t.Errorf("Expected type admin_deposit, got %s", history[0].Type)
	}
	if history[0].Description != "signup bonus" {
		t.Errorf("Expected explicit description, got %q", history[0].Description)
	}
}

func TestAdminWithdrawal_DebitsUser(t *testing.T) {
	engine, service, _, cleanup := setupEngineTest(t)
	defer cleanup()

	ctx := context.Background()
	seedBalance(t, service, "bob", "USD", decimal.NewFromInt(80))

	_, err := engine.AdminWithdrawal(ctx, Caller{Id: "root", Admin: true}, "bob", decimal.NewFromInt(30), "USD", "")
	if err != nil {
		t.Fatalf("AdminWithdrawal failed: %v", err)
	}

	bobBalance, _ := service.GetBalance(ctx, store.AccountRef{OwnerId: "bob", Currency: "USD"})
	if !bobBalance.Equal(decimal.NewFromInt(50)) {
		t.Errorf("Expected balance 50, got %s", bobBalance.String())
	}

	history, _ := service.Query(ctx, "bob", 10, 0)
	found := 0
	for _, tx := range history {
		if tx.Type == models.TxTypeAdminWithdrawal {
			found++
		}
	}
	if found != 1 {
		t.Errorf("Expected 1 admin_withdrawal record, got %d", found)
	}
}

func TestConvert_ExchangesBalances(t *testing.T) {
	engine, service, _, cleanup := setupEngineTest(t)
	defer cleanup()

	ctx := context.Background()
	seedBalance(t, service, "alice", "BTC", decimal.NewFromInt(1))

	result, err := engine.Convert(ctx, Caller{Id: "alice"}, decimal.NewFromInt(1), "BTC", "ETH")
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	btcBalance, _ := service.GetBalance(ctx, store.AccountRef{OwnerId: "alice", Currency: "BTC"})
	ethBalance, _ := service.GetBalance(ctx, store.AccountRef{OwnerId: "alice", Currency: "ETH"})

	if !btcBalance.Equal(decimal.Zero) {
		t.Errorf("Expected BTC balance 0, got %s", btcBalance.String())
	}
	if !ethBalance.Equal(decimal.NewFromFloat(14.3)) {
		t.Errorf("Expected ETH balance 14.3, got %s", ethBalance.String())
	}

	// Single record, denominated in the source currency
	history, _ := service.Query(ctx, "alice", 10, 0)
	var convertRows []models.Transaction
	for _, tx := range history {
		if tx.Type == models.TxTypeConvert {
			convertRows = append(convertRows, tx)
		}
	}
	if len(convertRows) != 1 {
		t.Fatalf("Expected 1 convert record, got %d", len(convertRows))
	}
	if convertRows[0].Currency != "BTC" || !convertRows[0].Amount.Equal(decimal.NewFromInt(1)) {
		t.Errorf("Unexpected convert record: %+v", convertRows[0])
	}
	if result.TransactionId != convertRows[0].Id {
		t.Errorf("Result id %s does not match record id %s", result.TransactionId, convertRows[0].Id)
	}
}

func TestConvert_SameCurrency(t *testing.T) {
	engine, _, _, cleanup := setupEngineTest(t)
	defer cleanup()

	_, err := engine.Convert(context.Background(), Caller{Id: "alice"}, decimal.NewFromInt(1), "USD", "USD")
	if !errors.Is(err, ErrCurrencyMismatch) {
		t.Errorf("Expected ErrCurrencyMismatch, got %v", err)
	}
}

func TestConvert_MissingRate(t *testing.T) {
	engine, service, _, cleanup := setupEngineTest(t)
	defer cleanup()

	ctx := context.Background()
	seedBalance(t, service, "alice", "ETH", decimal.NewFromInt(1))

	_, err := engine.Convert(ctx, Caller{Id: "alice"}, decimal.NewFromInt(1), "ETH", "USD")
	if err == nil {
		t.Fatal("Expected error for missing rate")
	}

	// The failed conversion must not touch balances
	ethBalance, _ := service.GetBalance(ctx, store.AccountRef{OwnerId: "alice", Currency: "ETH"})
	if !ethBalance.Equal(decimal.NewFromInt(1)) {
		t.Errorf("Expected ETH balance unchanged at 1, got %s", ethBalance.String())
	}
}

// flakyLedger fails every Adjust against one owner, passing everything else
// through to the real store.
type flakyLedger struct {
	store.Ledger
	failOwner string
}

func (f *flakyLedger) Adjust(ctx context.Context, account store.AccountRef, delta decimal.Decimal, lastTransactionId string) (decimal.Decimal, error) {
	if account.OwnerId == f.failOwner {
		return decimal.Zero, errors.New("injected adjust failure")
	}
	return f.Ledger.Adjust(ctx, account, delta, lastTransactionId)
}

func TestTransfer_CreditFailureRestoresDebit(t *testing.T) {
	_, service, _, cleanup := setupEngineTest(t)
	defer cleanup()

	ctx := context.Background()
	seedBalance(t, service, "alice", "USD", decimal.NewFromInt(100))

	currencies, _ := common.NewCurrencyRegistry(common.DefaultCurrencies())
	engine, err := NewEngine(EngineParams{
		Ledger:     &flakyLedger{Ledger: service, failOwner: "bob"},
		Log:        service,
		Directory:  service,
		Currencies: currencies,
	})
	if err != nil {
		t.Fatalf("Failed to build engine: %v", err)
	}

	if _, err := engine.SendPayment(ctx, Caller{Id: "alice"}, "bob", decimal.NewFromInt(40), "USD", ""); err == nil {
		t.Fatal("Expected transfer to fail")
	}

	// The applied debit must be compensated
	aliceBalance, _ := service.GetBalance(ctx, store.AccountRef{OwnerId: "alice", Currency: "USD"})
	if !aliceBalance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected alice balance restored to 100, got %s", aliceBalance.String())
	}
	history, _ := service.Query(ctx, "alice", 10, 0)
	if len(history) != 0 {
		t.Errorf("Expected no transaction records, got %d", len(history))
	}
}

// failingLog rejects every append
type failingLog struct{}

func (failingLog) Append(context.Context, models.Transaction) (*models.Transaction, error) {
	return nil, errors.New("injected append failure")
}

func (failingLog) AppendPair(context.Context, models.Transaction, models.Transaction) (*models.Transaction, *models.Transaction, error) {
	return nil, nil, errors.New("injected append failure")
}

func (failingLog) Query(context.Context, string, int, int) ([]models.Transaction, error) {
	return nil, nil
}

func TestTransfer_AppendFailureRestoresBothSides(t *testing.T) {
	_, service, _, cleanup := setupEngineTest(t)
	defer cleanup()

	ctx := context.Background()
	seedBalance(t, service, "alice", "USD", decimal.NewFromInt(100))

	currencies, _ := common.NewCurrencyRegistry(common.DefaultCurrencies())
	engine, err := NewEngine(EngineParams{
		Ledger:     service,
		Log:        failingLog{},
		Directory:  service,
		Currencies: currencies,
	})
	if err != nil {
		t.Fatalf("Failed to build engine: %v", err)
	}

	if _, err := engine.SendPayment(ctx, Caller{Id: "alice"}, "bob", decimal.NewFromInt(40), "USD", ""); err == nil {
		t.Fatal("Expected transfer to fail")
	}

	aliceBalance, _ := service.GetBalance(ctx, store.AccountRef{OwnerId: "alice", Currency: "USD"})
	bobBalance, _ := service.GetBalance(ctx, store.AccountRef{OwnerId: "bob", Currency: "USD"})
	if !aliceBalance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected alice balance restored to 100, got %s", aliceBalance.String())
	}
	if !bobBalance.Equal(decimal.Zero) {
		t.Errorf("Expected bob balance restored to 0, got %s", bobBalance.String())
	}
}

// brokenPairLog delegates reads and single appends to the real log but
// fails every pair write.
type brokenPairLog struct {
	store.TransactionLog
}

func (brokenPairLog) AppendPair(context.Context, models.Transaction, models.Transaction) (*models.Transaction, *models.Transaction, error) {
	return nil, nil, errors.New("injected pair append failure")
}

func TestTransfer_FailedRecordingLeavesNoAuditRows(t *testing.T) {
	_, service, _, cleanup := setupEngineTest(t)
	defer cleanup()

	ctx := context.Background()
	seedBalance(t, service, "alice", "USD", decimal.NewFromInt(100))

	currencies, _ := common.NewCurrencyRegistry(common.DefaultCurrencies())
	engine, err := NewEngine(EngineParams{
		Ledger:     service,
		Log:        brokenPairLog{TransactionLog: service},
		Directory:  service,
		Currencies: currencies,
	})
	if err != nil {
		t.Fatalf("Failed to build engine: %v", err)
	}

	if _, err := engine.SendPayment(ctx, Caller{Id: "alice"}, "bob", decimal.NewFromInt(40), "USD", ""); err == nil {
		t.Fatal("Expected transfer to fail")
	}

	// Balances are compensated and the durable log holds neither side: a
	// reader must never see a completed send for a transfer that did not
	// happen.
	aliceBalance, _ := service.GetBalance(ctx, store.AccountRef{OwnerId: "alice", Currency: "USD"})
	if !aliceBalance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected alice balance restored to 100, got %s", aliceBalance.String())
	}
	for _, owner := range []string{"alice", "bob"} {
		history, err := service.Query(ctx, owner, 10, 0)
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if len(history) != 0 {
			t.Errorf("Expected no durable records for %s, got %+v", owner, history)
		}
	}
}

// contendedLedger always loses the version race
type contendedLedger struct{}

func (contendedLedger) GetBalance(context.Context, store.AccountRef) (decimal.Decimal, error) {
	return decimal.NewFromInt(1000), nil
}

func (contendedLedger) Adjust(context.Context, store.AccountRef, decimal.Decimal, string) (decimal.Decimal, error) {
	return decimal.Zero, store.ErrConcurrentModification
}

func (contendedLedger) Create(context.Context, store.AccountRef, decimal.Decimal) error {
	return nil
}

func (contendedLedger) GetAllBalances(context.Context, string) ([]models.AccountBalance, error) {
	return nil, nil
}

func TestTransfer_RetriesExhaustedReturnsBusy(t *testing.T) {
	_, service, _, cleanup := setupEngineTest(t)
	defer cleanup()

	currencies, _ := common.NewCurrencyRegistry(common.DefaultCurrencies())
	engine, err := NewEngine(EngineParams{
		Ledger:     contendedLedger{},
		Log:        service,
		Directory:  service,
		Currencies: currencies,
		MaxRetries: 3,
	})
	if err != nil {
		t.Fatalf("Failed to build engine: %v", err)
	}

	_, err = engine.SendPayment(context.Background(), Caller{Id: "alice"}, "bob", decimal.NewFromInt(1), "USD", "")
	if !errors.Is(err, ErrBusy) {
		t.Errorf("Expected ErrBusy after exhausted retries, got %v", err)
	}
}

func TestConcurrentTransfers_ConserveFunds(t *testing.T) {
	// In-memory SQLite cannot be shared across connections, so concurrent
	// access needs a file-backed database.
	path := filepath.Join(t.TempDir(), "wallet_test.db")
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	defer db.Close()

	service := database.NewServiceWithDB(db)
	if err := service.InitSchema(); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	ctx := context.Background()
	if _, err := service.CreateUser(ctx, "alice", "alice", "alice@example.com", false); err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}
	if _, err := service.CreateUser(ctx, "bob", "bob", "bob@example.com", false); err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}
	seedBalance(t, service, "alice", "USD", decimal.NewFromInt(100))

	currencies, _ := common.NewCurrencyRegistry(common.DefaultCurrencies())
	engine, err := NewEngine(EngineParams{
		Ledger:     service,
		Log:        service,
		Directory:  service,
		Currencies: currencies,
		MaxRetries: 20,
	})
	if err != nil {
		t.Fatalf("Failed to build engine: %v", err)
	}

	const workers = 10
	var wg sync.WaitGroup
	results := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			_, results[slot] = engine.SendPayment(ctx, Caller{Id: "alice"}, "bob", decimal.NewFromInt(1), "USD", "")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
		} else if !errors.Is(err, ErrBusy) && !errors.Is(err, store.ErrInsufficientFunds) {
			t.Errorf("Unexpected transfer error: %v", err)
		}
	}

	aliceBalance, _ := service.GetBalance(ctx, store.AccountRef{OwnerId: "alice", Currency: "USD"})
	bobBalance, _ := service.GetBalance(ctx, store.AccountRef{OwnerId: "bob", Currency: "USD"})

	expectedAlice := decimal.NewFromInt(int64(100 - succeeded))
	expectedBob := decimal.NewFromInt(int64(succeeded))

	if !aliceBalance.Equal(expectedAlice) {
		t.Errorf("Expected alice balance %s, got %s", expectedAlice.String(), aliceBalance.String())
	}
	if !bobBalance.Equal(expectedBob) {
		t.Errorf("Expected bob balance %s, got %s", expectedBob.String(), bobBalance.String())
	}
	if !aliceBalance.Add(bobBalance).Equal(decimal.NewFromInt(100)) {
		t.Errorf("Funds not conserved: %s + %s", aliceBalance.String(), bobBalance.String())
	}
}
