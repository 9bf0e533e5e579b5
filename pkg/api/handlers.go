package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/settlex-hq/settlex-settler/pkg/chainclient"
	"github.com/settlex-hq/settlex-settler/pkg/importer"
	"github.com/settlex-hq/settlex-settler/pkg/logger"
	"github.com/settlex-hq/settlex-settler/pkg/models"
	"github.com/settlex-hq/settlex-settler/pkg/settlement"
	"github.com/settlex-hq/settlex-settler/pkg/store"
	"github.com/settlex-hq/settlex-settler/pkg/tokens"
)

// Handlers groups all HTTP handler methods and their dependencies.
type Handlers struct {
	svc      *settlement.Service
	chain    *chainclient.Client
	store    *store.Store
	importer *importer.Importer
	registry *tokens.Registry
	log      logger.Logger
}

// --- helpers ---

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.ErrorWith(logger.API, "Encode error: %v", err)
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return def
	}
	return v
}

// settleRequest is the body for both run and preview.
type settleRequest struct {
	Intents     []models.PaymentIntent `json:"intents"`
	SourceToken string                 `json:"source_token,omitempty"`
	AutoSwap    *bool                  `json:"auto_swap,omitempty"`
}

// --- RunSettlement ---

func (h *Handlers) RunSettlement(w http.ResponseWriter, r *http.Request) {
	var req settleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	outcome, err := h.svc.Settle(r.Context(), req.Intents, settlement.RunOptions{
		SourceToken: req.SourceToken,
		AutoSwap:    req.AutoSwap,
	})
	switch {
	case errors.Is(err, settlement.ErrEmptyBatch):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, settlement.ErrSettlementInProgress):
		h.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, settlement.ErrCircuitOpen):
		h.writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, settlement.ErrUserRejected):
		h.writeJSON(w, http.StatusOK, map[string]any{
			"status": "cancelled",
			"states": h.svc.Tracker().Snapshot(),
		})
	case err != nil:
		h.writeJSON(w, http.StatusBadGateway, map[string]any{
			"error":   err.Error(),
			"outcome": outcome,
			"states":  h.svc.Tracker().Snapshot(),
		})
	default:
		h.writeJSON(w, http.StatusOK, map[string]any{
			"status":  "confirmed",
			"outcome": outcome,
			"states":  h.svc.Tracker().Snapshot(),
		})
	}
}

// --- PreviewSettlement ---

// PreviewSettlement partitions the batch without submitting anything.
func (h *Handlers) PreviewSettlement(w http.ResponseWriter, r *http.Request) {
	var req settleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.Intents) == 0 {
		h.writeError(w, http.StatusBadRequest, "no payment intents")
		return
	}

	source := h.registry.Resolve(req.SourceToken)
	autoSwap := true
	if req.AutoSwap != nil {
		autoSwap = *req.AutoSwap
	}

	plan, err := settlement.BuildSwapPlan(req.Intents, source, h.registry, autoSwap)
	if err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	groups := make([]map[string]any, 0, len(plan.Groups))
	for _, g := range plan.Groups {
		groups = append(groups, map[string]any{
			"currency":  g.Symbol,
			"token":     g.TokenOut.Hex(),
			"total":     tokens.FormatAmount(g.TotalAmount),
			"employees": len(g.Intents),
		})
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"source_token": source.Symbol,
		"auto_swap":    autoSwap,
		"direct_count": len(plan.Direct),
		"direct_total": tokens.FormatAmount(plan.TotalDirectAmount),
		"swap_total":   tokens.FormatAmount(plan.TotalSwapAmount),
		"total":        tokens.FormatAmount(plan.Total()),
		"swap_groups":  groups,
	})
}

// --- SettlementStatus ---

func (h *Handlers) SettlementStatus(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"in_flight": h.svc.InFlight(),
		"states":    h.svc.Tracker().Snapshot(),
		"confirmed": h.svc.Tracker().ConfirmedCount(),
	})
}

// --- ImportCSV ---

func (h *Handlers) ImportCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "file field is required: "+err.Error())
		return
	}
	defer file.Close()

	result, err := h.importer.Parse(file)
	if err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	h.log.InfoWith(logger.API, "CSV import: %d accepted, %d rejected",
		len(result.Intents), len(result.Errors))
	h.writeJSON(w, http.StatusOK, result)
}

// --- History ---

func (h *Handlers) ListHistory(w http.ResponseWriter, r *http.Request) {
	limit := parseIntDefault(r.URL.Query().Get("limit"), 50)
	records, err := h.store.History(limit)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		records = []models.PayrollRecord{}
	}
	h.writeJSON(w, http.StatusOK, records)
}

// --- Templates ---

func (h *Handlers) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.store.Templates()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if templates == nil {
		templates = []models.PayrollTemplate{}
	}
	h.writeJSON(w, http.StatusOK, templates)
}

func (h *Handlers) SaveTemplate(w http.ResponseWriter, r *http.Request) {
	var tpl models.PayrollTemplate
	if err := json.NewDecoder(r.Body).Decode(&tpl); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if tpl.Name == "" {
		h.writeError(w, http.StatusBadRequest, "template name is required")
		return
	}
	if err := h.store.SaveTemplate(&tpl); err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusCreated, tpl)
}

func (h *Handlers) GetTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, err := h.store.Template(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, tpl)
}

func (h *Handlers) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteTemplate(chi.URLParam(r, "id")); err != nil {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// --- EmployerStats ---

func (h *Handlers) EmployerStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.chain.EmployerStats(r.Context())
	if err != nil {
		h.writeError(w, http.StatusBadGateway, "failed to read employer stats: "+err.Error())
		return
	}

	perToken := make(map[string]string)
	for _, token := range h.registry.List() {
		paid, err := h.chain.EmployerTokenStats(r.Context(), token.Address)
		if err != nil {
			continue
		}
		perToken[token.Symbol] = tokens.FormatAmount(paid)
	}

	resp := map[string]any{
		"employer":       h.chain.EmployerAddress().Hex(),
		"total_paid":     tokens.FormatAmount(stats.TotalPaid),
		"payment_count":  stats.PaymentCount.String(),
		"is_authorized":  stats.IsAuthorized,
		"paid_per_token": perToken,
	}
	if total, err := h.chain.TotalPayments(r.Context()); err == nil {
		resp["global_payment_count"] = total.String()
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// --- Tokens ---

func (h *Handlers) ListTokens(w http.ResponseWriter, r *http.Request) {
	list := h.registry.List()
	out := make([]map[string]any, 0, len(list))
	for _, t := range list {
		out = append(out, map[string]any{
			"symbol":   t.Symbol,
			"address":  t.Address.Hex(),
			"decimals": tokens.Decimals,
			"default":  t.Symbol == h.registry.Default().Symbol,
		})
	}
	h.writeJSON(w, http.StatusOK, out)
}
