package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/client/jupiter"
	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/models"
	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/repository"
)

type fakeTriggerAPI struct {
	mu       sync.Mutex
	created  []jupiter.CreateOrderRequest
	canceled []jupiter.CancelOrderRequest
	executed []jupiter.ExecuteRequest

	err      error
	openBody string
	openErr  error
}

func (f *fakeTriggerAPI) CreateOrder(_ context.Context, req jupiter.CreateOrderRequest) (*jupiter.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, req)
	return &jupiter.Response{Status: 200, Body: json.RawMessage(`{"order":"ord-9","requestId":"req-9","transaction":"base64tx"}`)}, nil
}

func (f *fakeTriggerAPI) CancelOrder(_ context.Context, req jupiter.CancelOrderRequest) (*jupiter.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.canceled = append(f.canceled, req)
	return &jupiter.Response{Status: 200, Body: json.RawMessage(`{"transaction":"tx","requestId":"r"}`)}, nil
}

func (f *fakeTriggerAPI) GetTriggerOrders(_ context.Context, q jupiter.GetOrdersQuery) (*jupiter.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.openErr != nil {
		return nil, f.openErr
	}
	body := f.openBody
	if body == "" {
		body = `{"orders":[]}`
	}
	return &jupiter.Response{Status: 200, Body: json.RawMessage(body)}, nil
}

func (f *fakeTriggerAPI) Execute(_ context.Context, req jupiter.ExecuteRequest) (*jupiter.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.executed = append(f.executed, req)
	return &jupiter.Response{Status: 200, Body: json.RawMessage(`{"status":"Success","signature":"sig-1"}`)}, nil
}

func (f *fakeTriggerAPI) setOpen(body string, err error) {
	f.mu.Lock()
	f.openBody, f.openErr = body, err
	f.mu.Unlock()
}

type jupFixture struct {
	*fixture
	api *fakeTriggerAPI
	svc *JupiterOrderService
}

func newJupFixture(t *testing.T) *jupFixture {
	f := newFixture(t)
	api := &fakeTriggerAPI{}
	return &jupFixture{
		fixture: f,
		api:     api,
		svc: &JupiterOrderService{
			API:     api,
			Wallets: f.store,
			Audit:   f.audit,
			Logger:  zaptest.NewLogger(t),
		},
	}
}

func (j *jupFixture) addWallet(t *testing.T, userID, address string) {
	t.Helper()
	require.NoError(t, j.store.LinkWallet(context.Background(), &models.UserWallet{UserID: userID, Address: address, Chain: models.ChainSOL}))
}

func createInput() CreateTriggerOrderInput {
	return CreateTriggerOrderInput{
		InputMint:    "So11111111111111111111111111111111111111112",
		OutputMint:   "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
		Maker:        "maker-wallet",
		Payer:        "maker-wallet",
		MakingAmount: "1000000",
		TakingAmount: "250000",
		Symbol:       "sol",
	}
}

func TestJupiterCreate_AuditOnlyForOwner(t *testing.T) {
	cases := []struct {
		name      string
		userID    string
		ownerOf   string
		wantAudit int
	}{
		{name: "owner", userID: "user-1", ownerOf: "maker-wallet", wantAudit: 1},
		{name: "anonymous", userID: "", ownerOf: "maker-wallet", wantAudit: 0},
		{name: "not owner", userID: "user-1", ownerOf: "other-wallet", wantAudit: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			j := newJupFixture(t)
			j.addWallet(t, "user-1", tc.ownerOf)

			resp, err := j.svc.Create(context.Background(), tc.userID, createInput())
			require.NoError(t, err)
			assert.JSONEq(t, `{"order":"ord-9","requestId":"req-9","transaction":"base64tx"}`, string(resp.Body))
			require.Len(t, j.api.created, 1)
			assert.Equal(t, "1000000", j.api.created[0].Params.MakingAmount)

			j.audit.Flush()
			assert.Equal(t, tc.wantAudit, j.history.Calls())
			if tc.wantAudit == 0 {
				return
			}
			rows, err := j.store.ListOrderHistory(context.Background(), repository.ListOrderHistoryParams{})
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, models.SourceJUP, rows[0].Source)
			assert.Equal(t, "maker-wallet", rows[0].UserAddress)
			assert.Contains(t, string(rows[0].Meta), "ord-9")
		})
	}
}

func TestJupiterCreate_ParamsOverrideFlat(t *testing.T) {
	j := newJupFixture(t)
	in := createInput()
	in.MakingAmount, in.TakingAmount = "", ""
	var params TriggerOrderParams
	require.NoError(t, json.Unmarshal([]byte(`{"makingAmount":5000,"takingAmount":"7","slippageBps":50}`), &params))
	in.Params = &params

	_, err := j.svc.Create(context.Background(), "", in)
	require.NoError(t, err)
	got := j.api.created[0].Params
	assert.Equal(t, "5000", got.MakingAmount)
	assert.Equal(t, "7", got.TakingAmount)
	assert.Equal(t, "50", got.SlippageBps)
}

func TestJupiterCreate_Validation(t *testing.T) {
	j := newJupFixture(t)
	in := createInput()
	in.Payer = ""
	_, err := j.svc.Create(context.Background(), "", in)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "payer is required", verr.Message)

	in = createInput()
	in.TakingAmount = ""
	_, err = j.svc.Create(context.Background(), "", in)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "takingAmount is required", verr.Message)
	assert.Empty(t, j.api.created)
}

func TestJupiterCreate_UpstreamErrorNoAudit(t *testing.T) {
	j := newJupFixture(t)
	j.addWallet(t, "user-1", "maker-wallet")
	j.api.err = &jupiter.APIError{Status: 400, Body: `{"error":"bad mint"}`}

	_, err := j.svc.Create(context.Background(), "user-1", createInput())
	var apiErr *jupiter.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 400, apiErr.Status)
	j.audit.Flush()
	assert.Equal(t, 0, j.history.Calls())
}

func TestJupiterCancel_AuditsBestEffort(t *testing.T) {
	j := newJupFixture(t)
	j.history.fail = errors.New("audit down")

	resp, err := j.svc.Cancel(context.Background(), CancelTriggerOrderInput{Maker: "m", Order: "ord-1"})
	require.NoError(t, err)
	require.NotNil(t, resp)
	j.audit.Flush()
	assert.Equal(t, 1, j.history.Calls())

	_, err = j.svc.Cancel(context.Background(), CancelTriggerOrderInput{Maker: "m"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "order is required", verr.Message)
}

func TestJupiterExecute_AuditsWithMaker(t *testing.T) {
	j := newJupFixture(t)
	_, err := j.svc.Execute(context.Background(), ExecuteTriggerOrderInput{SignedTransaction: "tx", RequestID: "r"})
	require.NoError(t, err)
	_, err = j.svc.Execute(context.Background(), ExecuteTriggerOrderInput{SignedTransaction: "tx", RequestID: "r", Maker: "m"})
	require.NoError(t, err)
	j.audit.Flush()
	assert.Equal(t, 1, j.history.Calls())

	rows, err := j.store.ListOrderHistory(context.Background(), repository.ListOrderHistoryParams{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, models.EventLimitExecute, rows[0].EventType)
	require.NotNil(t, rows[0].TxHash)
	assert.Equal(t, "sig-1", *rows[0].TxHash)
}

func TestJupiterOpenOrders_Decodes(t *testing.T) {
	j := newJupFixture(t)
	j.api.setOpen(`{"orders":[{"order":"o1","status":"Open"},{"order":"o2","status":"Open"}]}`, nil)
	orders, err := j.svc.OpenOrders(context.Background(), "wallet", "")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "o2", orders[1].Order)

	_, err = j.svc.Open(context.Background(), OpenTriggerOrdersInput{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}
