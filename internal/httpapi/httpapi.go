package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"posdemo/backend/internal/domain"
	"posdemo/backend/internal/report"
	"posdemo/backend/internal/service"
	"posdemo/backend/internal/store"
)

const (
	dateLayout  = "2006-01-02"
	maxBodySize = 1 << 20
	xlsxType    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type API struct {
	service       *service.Service
	log           *logrus.Entry
	allowedOrigin string
}

func New(svc *service.Service, logger *logrus.Logger, allowedOrigin string) *API {
	return &API{
		service:       svc,
		log:           logger.WithField("component", "http"),
		allowedOrigin: allowedOrigin,
	}
}

func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", a.handleHealth)

	mux.HandleFunc("/api/v1/items", a.handleItems)
	mux.HandleFunc("/api/v1/items/", a.handleItemActions)
	mux.HandleFunc("/api/v1/categories", a.handleCategories)
	mux.HandleFunc("/api/v1/categories/", a.handleCategoryActions)

	mux.HandleFunc("/api/v1/cart", a.handleCart)
	mux.HandleFunc("/api/v1/cart/items", a.handleCartItems)
	mux.HandleFunc("/api/v1/cart/items/", a.handleCartLineActions)

	mux.HandleFunc("/api/v1/checkout", a.handleCheckout)
	mux.HandleFunc("/api/v1/checkout/cancel", a.handleCheckoutCancel)
	mux.HandleFunc("/api/v1/checkout/complete", a.handleCheckoutComplete)

	mux.HandleFunc("/api/v1/transactions", a.handleTransactions)
	mux.HandleFunc("/api/v1/transactions/", a.handleTransactionActions)

	mux.HandleFunc("/api/v1/reports/dashboard", a.handleDashboard)
	mux.HandleFunc("/api/v1/reports/sales", a.handleSalesReport)
	mux.HandleFunc("/api/v1/reports/inventory", a.handleInventoryReport)

	mux.HandleFunc("/api/v1/admin/reset", a.handleReset)

	return a.withMiddleware(mux)
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok": true,
		"at": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) handleItems(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		items := a.service.ListItems(q.Get("q"), q.Get("category"))
		writeJSON(w, http.StatusOK, map[string]any{"items": items})
	case http.MethodPost:
		var draft domain.ItemDraft
		if err := decodeJSON(r, &draft); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		item, err := a.service.AddItem(r.Context(), draft)
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"item": item})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleItemActions(w http.ResponseWriter, r *http.Request) {
	tail := pathTail(r, "/api/v1/items/")
	if tail == "" {
		writeError(w, http.StatusBadRequest, errors.New("item id required"))
		return
	}

	if id, ok := strings.CutSuffix(tail, "/restock"); ok {
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}
		var req domain.RestockRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		item, err := a.service.RestockItem(r.Context(), strings.Trim(id, "/"), req.Qty)
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"item": item})
		return
	}

	switch r.Method {
	case http.MethodGet:
		item, err := a.service.GetItem(tail)
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"item": item})
	case http.MethodPut:
		var draft domain.ItemDraft
		if err := decodeJSON(r, &draft); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		item, err := a.service.UpdateItem(r.Context(), tail, draft)
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"item": item})
	case http.MethodDelete:
		if err := a.service.DeleteItem(r.Context(), tail); err != nil {
			a.writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleCategories(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"categories": a.service.ListCategories()})
	case http.MethodPost:
		var req domain.CategoryRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		categories, err := a.service.AddCategory(r.Context(), req.Name)
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"categories": categories})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleCategoryActions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeMethodNotAllowed(w)
		return
	}
	name := pathTail(r, "/api/v1/categories/")
	if name == "" {
		writeError(w, http.StatusBadRequest, errors.New("category name required"))
		return
	}

	categories, err := a.service.DeleteCategory(r.Context(), name)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

func (a *API) handleCart(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, a.service.Cart())
	case http.MethodDelete:
		writeJSON(w, http.StatusOK, a.service.ClearCart())
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleCartItems(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	var req domain.CartAddRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	view, err := a.service.AddToCart(strings.TrimSpace(req.ItemID))
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (a *API) handleCartLineActions(w http.ResponseWriter, r *http.Request) {
	tail := pathTail(r, "/api/v1/cart/items/")
	if tail == "" {
		writeError(w, http.StatusBadRequest, errors.New("item id required"))
		return
	}

	var (
		view domain.CartView
		err  error
	)
	if id, ok := strings.CutSuffix(tail, "/increment"); ok {
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}
		view, err = a.service.IncrementLine(id)
	} else if id, ok := strings.CutSuffix(tail, "/decrement"); ok {
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}
		view, err = a.service.DecrementLine(id)
	} else {
		switch r.Method {
		case http.MethodPatch:
			var req domain.CartQuantityRequest
			if err := decodeJSON(r, &req); err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}
			view, err = a.service.SetLineQuantity(tail, req.Quantity)
		case http.MethodDelete:
			view = a.service.RemoveLine(tail)
		default:
			writeMethodNotAllowed(w)
			return
		}
	}
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (a *API) handleCheckout(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		paid := decimal.Zero
		if raw := strings.TrimSpace(r.URL.Query().Get("amount_paid")); raw != "" {
			parsed, err := decimal.NewFromString(raw)
			if err != nil {
				a.writeServiceError(w, store.NewValidationError("amount_paid", "must be a number"))
				return
			}
			paid = parsed
		}
		writeJSON(w, http.StatusOK, a.service.CheckoutStatus(paid))
	case http.MethodPost:
		status, err := a.service.BeginCheckout()
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, status)
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleCheckoutCancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, a.service.CancelCheckout())
}

func (a *API) handleCheckoutComplete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	var req domain.CheckoutCompleteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	res, err := a.service.CompleteCheckout(r.Context(), req.CustomerName, req.AmountPaid)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (a *API) handleTransactions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	txs := a.service.ListTransactions(r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, map[string]any{"transactions": txs})
}

func (a *API) handleTransactionActions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	id := pathTail(r, "/api/v1/transactions/")
	if id == "" {
		writeError(w, http.StatusBadRequest, errors.New("transaction id required"))
		return
	}

	tx, err := a.service.GetTransaction(id)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transaction": tx})
}

func (a *API) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, a.service.Dashboard())
}

func (a *API) handleSalesReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	q := r.URL.Query()
	from, err := parseDay(q.Get("from"), "from")
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	to, err := parseDay(q.Get("to"), "to")
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	if !to.IsZero() {
		to = to.Add(24*time.Hour - time.Nanosecond)
	}

	sales := a.service.SalesReport(from, to)
	switch reportFormat(r) {
	case "csv":
		var buf bytes.Buffer
		if err := report.WriteSalesCSV(&buf, sales); err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeAttachment(w, "text/csv; charset=utf-8", "sales-report.csv", buf.Bytes())
	case "xlsx":
		data, err := report.SalesXLSX(sales)
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeAttachment(w, xlsxType, "sales-report.xlsx", data)
	default:
		writeJSON(w, http.StatusOK, sales)
	}
}

func (a *API) handleInventoryReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	inv := a.service.InventoryReport()
	switch reportFormat(r) {
	case "csv":
		var buf bytes.Buffer
		if err := report.WriteInventoryCSV(&buf, inv); err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeAttachment(w, "text/csv; charset=utf-8", "inventory-report.csv", buf.Bytes())
	case "xlsx":
		data, err := report.InventoryXLSX(inv)
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeAttachment(w, xlsxType, "inventory-report.xlsx", data)
	default:
		writeJSON(w, http.StatusOK, inv)
	}
}

func (a *API) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	if err := a.service.Reset(r.Context()); err != nil {
		a.writeServiceError(w, err)
		return
	}
	a.log.Warn("terminal data reset")
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (a *API) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
		w.Header().Set("Access-Control-Allow-Origin", a.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
		w.Header().Set("Vary", "Origin")

		if r.Method == http.MethodPost || r.Method == http.MethodPatch || r.Method == http.MethodPut {
			r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		startedAt := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		a.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(startedAt).String(),
		}).Info("request")
	})
}

func (a *API) writeServiceError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	if status >= 500 {
		a.log.WithError(err).Error("internal error")
		writeJSON(w, status, errorBody{Error: "internal server error", Code: code})
		return
	}

	body := errorBody{Error: err.Error(), Code: code}
	var verr *store.ValidationError
	if errors.As(err, &verr) {
		body.Fields = verr.Fields
	}
	writeJSON(w, status, body)
}

type errorBody struct {
	Error  string             `json:"error"`
	Code   string             `json:"code"`
	Fields []store.FieldError `json:"fields,omitempty"`
}

// classify maps domain errors to an HTTP status and a stable error code.
// Order matters: a failed stock commit wraps both ErrInsufficientStock and
// the underlying cause.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, store.ErrValidation):
		return http.StatusBadRequest, "validation"
	case errors.Is(err, store.ErrInsufficientPayment):
		return http.StatusPaymentRequired, "insufficient_payment"
	case errors.Is(err, store.ErrEmptyCart):
		return http.StatusUnprocessableEntity, "empty_cart"
	case errors.Is(err, store.ErrInsufficientStock):
		return http.StatusConflict, "insufficient_stock"
	case errors.Is(err, store.ErrOutOfStock):
		return http.StatusConflict, "out_of_stock"
	case errors.Is(err, store.ErrStockExceeded):
		return http.StatusConflict, "stock_exceeded"
	case errors.Is(err, store.ErrDuplicateCategory):
		return http.StatusConflict, "duplicate_category"
	case errors.Is(err, store.ErrCategoryInUse):
		return http.StatusConflict, "category_in_use"
	case errors.Is(err, store.ErrCheckoutNotStarted):
		return http.StatusConflict, "checkout_not_started"
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "not_found"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func pathTail(r *http.Request, prefix string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/"))
}

func parseDay(raw string, field string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	day, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, store.NewValidationError(field, "must be a date in YYYY-MM-DD format")
	}
	return day, nil
}

func reportFormat(r *http.Request) string {
	return strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
}

func writeAttachment(w http.ResponseWriter, contentType string, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return err
	}
	return nil
}

func writeMethodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
}

func writeError(w http.ResponseWriter, status int, err error) {
	code := "bad_request"
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		status = http.StatusRequestEntityTooLarge
		code = "body_too_large"
	case status == http.StatusMethodNotAllowed:
		code = "method_not_allowed"
	}
	writeJSON(w, status, errorBody{Error: err.Error(), Code: code})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
