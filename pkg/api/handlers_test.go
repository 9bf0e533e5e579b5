package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/settlex-hq/settlex-settler/pkg/config"
	"github.com/settlex-hq/settlex-settler/pkg/importer"
	"github.com/settlex-hq/settlex-settler/pkg/logger"
	"github.com/settlex-hq/settlex-settler/pkg/models"
	"github.com/settlex-hq/settlex-settler/pkg/notifier"
	"github.com/settlex-hq/settlex-settler/pkg/settlement"
	"github.com/settlex-hq/settlex-settler/pkg/store"
	"github.com/settlex-hq/settlex-settler/pkg/tokens"
)

type stubBackend struct {
	receipt *settlement.Receipt
	err     error
}

func (s *stubBackend) SendCalls(ctx context.Context, calls []settlement.CallStep) (*settlement.Receipt, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.receipt, nil
}

func (s *stubBackend) EmployerAddress() common.Address {
	return common.HexToAddress("0x9999999999999999999999999999999999999999")
}

func newTestRouter(t *testing.T, backend settlement.Backend) http.Handler {
	t.Helper()

	reg := tokens.NewRegistry()
	log := &logger.EmptyLogger{}

	db, err := store.InitDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	st := store.New(db)

	builder := settlement.NewBuilder(
		reg,
		common.HexToAddress("0xAAAA000000000000000000000000000000000001"),
		common.HexToAddress("0xDEc0000000000000000000000000000000000000"),
		config.PayInSource,
	)
	svc := settlement.NewService(settlement.ServiceParams{
		Backend:     backend,
		Builder:     builder,
		Submitter:   settlement.NewSubmitter(backend, time.Minute, log),
		Registry:    reg,
		Notifier:    notifier.Noop{},
		History:     st,
		Logger:      log,
		SourceToken: "pathUSD",
		AutoSwap:    true,
	})

	return NewRouter(svc, nil, st, importer.New(reg), reg, log)
}

func okBackend() *stubBackend {
	return &stubBackend{receipt: &settlement.Receipt{
		TxHash:            common.HexToHash("0xabc"),
		BlockNumber:       big.NewInt(777),
		GasUsed:           50000,
		EffectiveGasPrice: big.NewInt(20),
		Status:            1,
	}}
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func settleBody() map[string]any {
	return map[string]any{
		"intents": []models.PaymentIntent{
			{EmployeeID: 1, Name: "Alice", Email: "alice@example.com", Recipient: "0x1111111111111111111111111111111111111111", Amount: "100", Currency: "AlphaUSD"},
			{EmployeeID: 2, Name: "Bob", Email: "bob@example.com", Recipient: "0x2222222222222222222222222222222222222222", Amount: "30", Currency: "pathUSD"},
		},
	}
}

func TestRunSettlementEndpoint(t *testing.T) {
	router := newTestRouter(t, okBackend())

	rec := doJSON(t, router, http.MethodPost, "/api/v1/settlements", settleBody())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Status  string                   `json:"status"`
		Outcome models.SettlementOutcome `json:"outcome"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "confirmed", resp.Status)
	assert.True(t, resp.Outcome.Success)
	assert.Equal(t, uint64(777), resp.Outcome.BlockNumber)
}

func TestRunSettlementUserRejection(t *testing.T) {
	router := newTestRouter(t, &stubBackend{err: errors.New("user rejected transaction")})

	rec := doJSON(t, router, http.MethodPost, "/api/v1/settlements", settleBody())
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status string                         `json:"status"`
		States map[int]models.SettlementState `json:"states"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "cancelled", resp.Status)
	for _, state := range resp.States {
		assert.Equal(t, models.StateWaiting, state)
	}
}

func TestRunSettlementEmptyBatch(t *testing.T) {
	router := newTestRouter(t, okBackend())
	rec := doJSON(t, router, http.MethodPost, "/api/v1/settlements", map[string]any{"intents": []models.PaymentIntent{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPreviewSettlementEndpoint(t *testing.T) {
	router := newTestRouter(t, okBackend())

	rec := doJSON(t, router, http.MethodPost, "/api/v1/settlements/preview", settleBody())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		SourceToken string `json:"source_token"`
		DirectCount int    `json:"direct_count"`
		DirectTotal string `json:"direct_total"`
		SwapTotal   string `json:"swap_total"`
		Total       string `json:"total"`
		SwapGroups  []struct {
			Currency  string `json:"currency"`
			Total     string `json:"total"`
			Employees int    `json:"employees"`
		} `json:"swap_groups"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "pathUSD", resp.SourceToken)
	assert.Equal(t, 1, resp.DirectCount)
	assert.Equal(t, "30.000000", resp.DirectTotal)
	assert.Equal(t, "100.000000", resp.SwapTotal)
	assert.Equal(t, "130.000000", resp.Total)
	require.Len(t, resp.SwapGroups, 1)
	assert.Equal(t, "AlphaUSD", resp.SwapGroups[0].Currency)
}

func TestSettlementStatusEndpoint(t *testing.T) {
	router := newTestRouter(t, okBackend())

	doJSON(t, router, http.MethodPost, "/api/v1/settlements", settleBody())
	rec := doJSON(t, router, http.MethodGet, "/api/v1/settlements/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		InFlight  bool `json:"in_flight"`
		Confirmed int  `json:"confirmed"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.InFlight)
	assert.Equal(t, 2, resp.Confirmed)
}

func TestImportEndpoint(t *testing.T) {
	router := newTestRouter(t, okBackend())

	csv := `name,email,wallet,amount,currency
Alice,alice@example.com,0x1111111111111111111111111111111111111111,3200,pathUSD
Carol,carol@example.com,not-a-wallet,1500,pathUSD
`
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "payroll.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte(csv))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result importer.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Len(t, result.Intents, 1)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Row 3")
}

func TestHistoryEndpoint(t *testing.T) {
	router := newTestRouter(t, okBackend())

	// A settled batch appends a history record.
	doJSON(t, router, http.MethodPost, "/api/v1/settlements", settleBody())

	rec := doJSON(t, router, http.MethodGet, "/api/v1/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var records []models.PayrollRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, 2, records[0].Employees)
	assert.Equal(t, "130.000000", records[0].Total)
	assert.True(t, strings.HasPrefix(records[0].ID, "PR-"))
}

func TestTemplateEndpoints(t *testing.T) {
	router := newTestRouter(t, okBackend())

	body := models.PayrollTemplate{
		Name: "July payroll",
		Intents: []models.PaymentIntent{
			{EmployeeID: 1, Name: "Alice", Recipient: "0x1111111111111111111111111111111111111111", Amount: "3200", Currency: "pathUSD"},
		},
	}
	rec := doJSON(t, router, http.MethodPost, "/api/v1/templates", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.PayrollTemplate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/templates/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/templates", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []models.PayrollTemplate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	rec = doJSON(t, router, http.MethodDelete, "/api/v1/templates/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/templates/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTemplateNameRequired(t *testing.T) {
	router := newTestRouter(t, okBackend())
	rec := doJSON(t, router, http.MethodPost, "/api/v1/templates", models.PayrollTemplate{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListTokensEndpoint(t *testing.T) {
	router := newTestRouter(t, okBackend())

	rec := doJSON(t, router, http.MethodGet, "/api/v1/tokens", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []struct {
		Symbol  string `json:"symbol"`
		Default bool   `json:"default"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 4)
	assert.Equal(t, "pathUSD", list[0].Symbol)
	assert.True(t, list[0].Default)
}
