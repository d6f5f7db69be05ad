package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/IhuzaApp/groceryrw-backend/api/middleware"
	walletsvc "github.com/IhuzaApp/groceryrw-backend/internal/wallet"
	"github.com/IhuzaApp/groceryrw-backend/pkg/enums"
	pkgerrors "github.com/IhuzaApp/groceryrw-backend/pkg/errors"
	"github.com/IhuzaApp/groceryrw-backend/pkg/pagination"
)

type stubWalletService struct {
	reserveResult *walletsvc.ReserveResult
	settleResult  *walletsvc.SettleResult
	cancelResult  *walletsvc.CancelResult
	payoutResult  *walletsvc.PayoutResult
	balance       *walletsvc.BalanceView
	transactions  *walletsvc.TransactionList
	payouts       *walletsvc.PayoutList
	err           error

	lastOperation walletsvc.LedgerOperationInput
	lastPayout    walletsvc.PayoutInput
	lastParams    pagination.Params
}

func (s *stubWalletService) Reserve(_ context.Context, input walletsvc.LedgerOperationInput) (*walletsvc.ReserveResult, error) {
	s.lastOperation = input
	return s.reserveResult, s.err
}

func (s *stubWalletService) Settle(_ context.Context, input walletsvc.LedgerOperationInput) (*walletsvc.SettleResult, error) {
	s.lastOperation = input
	return s.settleResult, s.err
}

func (s *stubWalletService) Cancel(_ context.Context, input walletsvc.LedgerOperationInput) (*walletsvc.CancelResult, error) {
	s.lastOperation = input
	return s.cancelResult, s.err
}

func (s *stubWalletService) RequestPayout(_ context.Context, input walletsvc.PayoutInput) (*walletsvc.PayoutResult, error) {
	s.lastPayout = input
	return s.payoutResult, s.err
}

func (s *stubWalletService) GetBalance(_ context.Context, _ uuid.UUID) (*walletsvc.BalanceView, error) {
	return s.balance, s.err
}

func (s *stubWalletService) ListTransactions(_ context.Context, _ uuid.UUID, params pagination.Params) (*walletsvc.TransactionList, error) {
	s.lastParams = params
	return s.transactions, s.err
}

func (s *stubWalletService) ListPayouts(_ context.Context, _ uuid.UUID, params pagination.Params) (*walletsvc.PayoutList, error) {
	s.lastParams = params
	return s.payouts, s.err
}

func authedRequest(method, target, body string, shopperID uuid.UUID) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	return req.WithContext(middleware.WithUserID(req.Context(), shopperID.String()))
}

func TestWalletOperationReserve(t *testing.T) {
	shopperID := uuid.New()
	orderID := uuid.New()
	svc := &stubWalletService{reserveResult: &walletsvc.ReserveResult{
		OrderID:            orderID,
		OrderKind:          enums.OrderKindStandard,
		AmountReserved:     decimal.RequireFromString("5000.00"),
		NewReservedBalance: decimal.RequireFromString("5000.00"),
	}}
	handler := WalletOperation(svc, nil)

	body := `{"order_id":"` + orderID.String() + `","operation":"reserve","order_type":"standard"}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/shopper/wallet/operations", body, shopperID))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.lastOperation.ShopperID != shopperID {
		t.Fatalf("expected shopper from token, got %s", svc.lastOperation.ShopperID)
	}
	if svc.lastOperation.OrderKind != enums.OrderKindStandard {
		t.Fatalf("unexpected order kind %s", svc.lastOperation.OrderKind)
	}

	var envelope struct {
		Data walletsvc.ReserveResult `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.OrderID != orderID {
		t.Fatalf("unexpected order id %s", envelope.Data.OrderID)
	}
	if !envelope.Data.AmountReserved.Equal(decimal.RequireFromString("5000.00")) {
		t.Fatalf("unexpected amount %s", envelope.Data.AmountReserved)
	}
}

func TestWalletOperationSettleDispatch(t *testing.T) {
	shopperID := uuid.New()
	orderID := uuid.New()
	svc := &stubWalletService{settleResult: &walletsvc.SettleResult{
		OrderID:   orderID,
		OrderKind: enums.OrderKindRestaurant,
	}}
	handler := WalletOperation(svc, nil)

	body := `{"order_id":"` + orderID.String() + `","operation":"settle","order_type":"restaurant"}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/shopper/wallet/operations", body, shopperID))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.lastOperation.OrderKind != enums.OrderKindRestaurant {
		t.Fatalf("unexpected order kind %s", svc.lastOperation.OrderKind)
	}
}

func TestWalletOperationRejectsUnknownOperation(t *testing.T) {
	handler := WalletOperation(&stubWalletService{}, nil)

	body := `{"order_id":"` + uuid.NewString() + `","operation":"release","order_type":"standard"}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/shopper/wallet/operations", body, uuid.New()))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestWalletOperationRequiresAuthContext(t *testing.T) {
	handler := WalletOperation(&stubWalletService{}, nil)

	body := `{"order_id":"` + uuid.NewString() + `","operation":"reserve","order_type":"standard"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/shopper/wallet/operations", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestWalletPayoutCreated(t *testing.T) {
	shopperID := uuid.New()
	svc := &stubWalletService{payoutResult: &walletsvc.PayoutResult{
		PayoutID:                uuid.New(),
		TransactionID:           uuid.New(),
		Amount:                  decimal.RequireFromString("600.00"),
		PreviousBalance:         decimal.RequireFromString("1000.00"),
		NewBalance:              decimal.RequireFromString("400.00"),
		Status:                  enums.PayoutStatusPending,
		EstimatedProcessingTime: "3-5 business days",
	}}
	handler := WalletPayout(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/shopper/wallet/payouts", `{"amount":"600.00"}`, shopperID))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if !svc.lastPayout.Amount.Equal(decimal.RequireFromString("600.00")) {
		t.Fatalf("unexpected payout amount %s", svc.lastPayout.Amount)
	}
	if svc.lastPayout.ShopperID != shopperID {
		t.Fatalf("expected shopper from token, got %s", svc.lastPayout.ShopperID)
	}
}

func TestWalletPayoutInsufficientBalance(t *testing.T) {
	svc := &stubWalletService{err: pkgerrors.New(pkgerrors.CodeInsufficientBalance, "insufficient available balance")}
	handler := WalletPayout(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/shopper/wallet/payouts", `{"amount":"600.00"}`, uuid.New()))

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse error response: %v", err)
	}
	if payload.Error.Code != string(pkgerrors.CodeInsufficientBalance) {
		t.Fatalf("unexpected error code %s", payload.Error.Code)
	}
}

func TestWalletBalanceSuccess(t *testing.T) {
	shopperID := uuid.New()
	svc := &stubWalletService{balance: &walletsvc.BalanceView{
		WalletID:         uuid.New(),
		ShopperID:        shopperID,
		AvailableBalance: decimal.RequireFromString("120.50"),
		ReservedBalance:  decimal.RequireFromString("30.00"),
	}}
	handler := WalletBalance(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodGet, "/api/v1/shopper/wallet", "", shopperID))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data walletsvc.BalanceView `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ShopperID != shopperID {
		t.Fatalf("unexpected shopper id %s", envelope.Data.ShopperID)
	}
}

func TestWalletTransactionsPassesPagination(t *testing.T) {
	svc := &stubWalletService{transactions: &walletsvc.TransactionList{Items: []walletsvc.TransactionView{}}}
	handler := WalletTransactions(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodGet, "/api/v1/shopper/wallet/transactions?limit=5&cursor=abc", "", uuid.New()))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastParams.Limit != 5 {
		t.Fatalf("expected limit 5 got %d", svc.lastParams.Limit)
	}
	if svc.lastParams.Cursor != "abc" {
		t.Fatalf("expected cursor abc got %q", svc.lastParams.Cursor)
	}
}

func TestWalletTransactionsRejectsBadLimit(t *testing.T) {
	handler := WalletTransactions(&stubWalletService{}, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodGet, "/api/v1/shopper/wallet/transactions?limit=naan", "", uuid.New()))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestWalletPayoutsSuccess(t *testing.T) {
	svc := &stubWalletService{payouts: &walletsvc.PayoutList{Items: []walletsvc.PayoutView{{
		ID:     uuid.New(),
		Amount: decimal.RequireFromString("600.00"),
		Status: enums.PayoutStatusPending,
	}}}}
	handler := WalletPayouts(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodGet, "/api/v1/shopper/wallet/payouts", "", uuid.New()))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data walletsvc.PayoutList `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Items) != 1 {
		t.Fatalf("expected one payout got %d", len(envelope.Data.Items))
	}
}
