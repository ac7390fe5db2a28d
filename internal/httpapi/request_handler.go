package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/emplix/emplix/internal/models"
	"github.com/emplix/emplix/internal/service"
	"github.com/emplix/emplix/internal/store"
)

// RequestHandler exposes the submit/review workflow and the vacation
// balance.
type RequestHandler struct {
	requests *service.RequestService
}

// NewRequestHandler creates the request handler.
func NewRequestHandler(requests *service.RequestService) *RequestHandler {
	return &RequestHandler{requests: requests}
}

type createRequestBody struct {
	Type      string          `json:"type"`
	StartDate *string         `json:"startDate,omitempty"`
	EndDate   *string         `json:"endDate,omitempty"`
	Reason    *string         `json:"reason,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

type requestResponse struct {
	RequestID string          `json:"requestId"`
	Type      string          `json:"type"`
	Status    string          `json:"status"`
	StartDate *string         `json:"startDate,omitempty"`
	EndDate   *string         `json:"endDate,omitempty"`
	Reason    *string         `json:"reason,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`

	Requester *requesterResponse `json:"requester,omitempty"`
}

type requesterResponse struct {
	Email      string  `json:"email"`
	FirstName  *string `json:"firstName,omitempty"`
	LastName   *string `json:"lastName,omitempty"`
	DocumentID *string `json:"documentId,omitempty"`
	Position   *string `json:"position,omitempty"`
}

func newRequestResponse(req *models.Request, withRequester bool) requestResponse {
	res := requestResponse{
		RequestID: req.RequestID.String(),
		Type:      req.Type,
		Status:    req.Status,
		Reason:    req.Reason,
		Data:      req.Data,
		CreatedAt: req.CreatedAt,
		UpdatedAt: req.UpdatedAt,
	}
	if req.StartDate != nil {
		s := req.StartDate.Format("2006-01-02")
		res.StartDate = &s
	}
	if req.EndDate != nil {
		s := req.EndDate.Format("2006-01-02")
		res.EndDate = &s
	}
	if withRequester {
		res.Requester = &requesterResponse{
			Email:      req.RequesterEmail,
			FirstName:  req.RequesterFirstName,
			LastName:   req.RequesterLastName,
			DocumentID: req.RequesterDocumentID,
			Position:   req.RequesterPosition,
		}
	}
	return res
}

func parseDateField(raw *string, field string, verr *service.ValidationError) *time.Time {
	if raw == nil {
		return nil
	}
	parsed, err := time.Parse("2006-01-02", *raw)
	if err != nil {
		verr.Fields = append(verr.Fields, service.FieldError{Field: field, Rule: "date", Message: "must be YYYY-MM-DD"})
		return nil
	}
	return &parsed
}

func (h *RequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body createRequestBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	verr := &service.ValidationError{}
	in := service.CreateRequestInput{
		Type:      body.Type,
		StartDate: parseDateField(body.StartDate, "startDate", verr),
		EndDate:   parseDateField(body.EndDate, "endDate", verr),
		Reason:    body.Reason,
		Data:      body.Data,
	}
	if len(verr.Fields) > 0 {
		writeError(w, r, verr)
		return
	}

	claims := claimsFromContext(r.Context())
	req, err := h.requests.Create(r.Context(), claims.TenantID, claims.UserID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, newRequestResponse(req, false))
}

func (h *RequestHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	requests, err := h.requests.ListMine(r.Context(), claims.TenantID, claims.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	res := make([]requestResponse, 0, len(requests))
	for _, req := range requests {
		res = append(res, newRequestResponse(req, false))
	}
	writeJSON(w, http.StatusOK, res)
}

// ListAll returns the tenant's requests for review, filterable by status
// and type. Admin only.
func (h *RequestHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	filters := store.RequestFilters{
		Status: r.URL.Query().Get("status"),
		Type:   r.URL.Query().Get("type"),
	}

	requests, err := h.requests.ListAll(r.Context(), claims.TenantID, filters)
	if err != nil {
		writeError(w, r, err)
		return
	}

	res := make([]requestResponse, 0, len(requests))
	for _, req := range requests {
		res = append(res, newRequestResponse(req, true))
	}
	writeJSON(w, http.StatusOK, res)
}

type updateStatusBody struct {
	Status string  `json:"status"`
	Reason *string `json:"reason,omitempty"`
}

// UpdateStatus resolves a pending request. Admin only.
func (h *RequestHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	requestID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		verr := &service.ValidationError{}
		verr.Fields = []service.FieldError{{Field: "id", Rule: "uuid", Message: "must be a valid uuid"}}
		writeError(w, r, verr)
		return
	}

	var body updateStatusBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	claims := claimsFromContext(r.Context())
	req, err := h.requests.UpdateStatus(r.Context(), claims.TenantID, requestID, body.Status, body.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newRequestResponse(req, false))
}

type balanceResponse struct {
	HireDate     string  `json:"hireDate"`
	MonthsWorked int     `json:"monthsWorked"`
	DaysEarned   float64 `json:"daysEarned"`
	DaysUsed     int     `json:"daysUsed"`
	Balance      float64 `json:"balance"`
}

func (h *RequestHandler) Balance(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	balance, err := h.requests.Balance(r.Context(), claims.TenantID, claims.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, balanceResponse{
		HireDate:     balance.HireDate.Format("2006-01-02"),
		MonthsWorked: balance.MonthsWorked,
		DaysEarned:   balance.DaysEarned.InexactFloat64(),
		DaysUsed:     balance.DaysUsed,
		Balance:      balance.Balance.InexactFloat64(),
	})
}
