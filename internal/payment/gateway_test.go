package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/WheelsHub/WheelsHub/internal/common/config"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Transaction{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// fakeGateway 模拟托管收银台：initialize 返回 link，verify 返回可配置状态。
func fakeGateway(t *testing.T, verifyStatus string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); !strings.HasPrefix(got, "Bearer ") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/payments":
			var req InitializeRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TxRef == "" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				"status": "success",
				"data":   map[string]any{"link": "https://checkout.example/" + req.TxRef},
			})
		case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/verify"):
			txRef := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/transactions/"), "/verify")
			json.NewEncoder(w).Encode(map[string]any{
				"status": "success",
				"data": map[string]any{
					"tx_ref":   txRef,
					"status":   verifyStatus,
					"amount":   int64(150000),
					"currency": "NGN",
				},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func newTestSvc(t *testing.T, gatewayURL string) *Service {
	t.Helper()
	gw := NewGateway(config.PaymentConfig{
		BaseURL:        gatewayURL,
		SecretKey:      "sk_test",
		RedirectURL:    "http://localhost/callback",
		TimeoutSeconds: 5,
	})
	return NewService(NewRepo(newTestDB(t)), gw, nil)
}

func TestInitializeAndVerify(t *testing.T) {
	srv := fakeGateway(t, "successful")
	defer srv.Close()
	svc := newTestSvc(t, srv.URL)
	ctx := context.Background()

	tx, err := svc.Initialize(ctx, InitializeInput{Amount: 150000, Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if !strings.HasPrefix(tx.TxRef, "whx-") {
		t.Fatalf("unexpected tx_ref %q", tx.TxRef)
	}
	if tx.Status != TxInitialized {
		t.Fatalf("expected initialized, got %q", tx.Status)
	}
	if tx.CheckoutURL == "" {
		t.Fatalf("expected checkout url")
	}
	if tx.Currency != "NGN" {
		t.Fatalf("expected NGN default currency, got %q", tx.Currency)
	}

	got, err := svc.Verify(ctx, tx.TxRef)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got.Status != TxSuccessful {
		t.Fatalf("expected successful, got %q", got.Status)
	}

	// 状态已落库
	again, err := svc.Verify(ctx, tx.TxRef)
	if err != nil {
		t.Fatalf("Verify again: %v", err)
	}
	if again.Status != TxSuccessful {
		t.Fatalf("expected persisted successful, got %q", again.Status)
	}
}

func TestVerifyFailedCharge(t *testing.T) {
	srv := fakeGateway(t, "failed")
	defer srv.Close()
	svc := newTestSvc(t, srv.URL)
	ctx := context.Background()

	tx, err := svc.Initialize(ctx, InitializeInput{Amount: 5000, Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	got, err := svc.Verify(ctx, tx.TxRef)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got.Status != TxFailed {
		t.Fatalf("expected failed, got %q", got.Status)
	}
}

func TestInitializeValidation(t *testing.T) {
	srv := fakeGateway(t, "successful")
	defer srv.Close()
	svc := newTestSvc(t, srv.URL)
	ctx := context.Background()

	if _, err := svc.Initialize(ctx, InitializeInput{Amount: 0, Email: "a@b.c"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zero amount, got %v", err)
	}
	if _, err := svc.Initialize(ctx, InitializeInput{Amount: 100, Email: " "}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank email, got %v", err)
	}
}

func TestVerifyUnknownTxRef(t *testing.T) {
	srv := fakeGateway(t, "successful")
	defer srv.Close()
	svc := newTestSvc(t, srv.URL)

	if _, err := svc.Verify(context.Background(), "whx-missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGatewayDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	svc := newTestSvc(t, srv.URL)

	_, err := svc.Initialize(context.Background(), InitializeInput{Amount: 100, Email: "a@b.c"})
	if !errors.Is(err, ErrGatewayUnavailable) {
		t.Fatalf("expected ErrGatewayUnavailable, got %v", err)
	}
}
