package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/emplix/emplix/internal/models"
	"github.com/emplix/emplix/internal/store"
)

// RequestService owns the submit/review workflow and the vacation balance
// derived from approved requests.
type RequestService struct {
	requests  store.RequestStore
	employees store.EmployeeStore
	now       func() time.Time
}

// NewRequestService creates a request workflow service.
func NewRequestService(requests store.RequestStore, employees store.EmployeeStore) *RequestService {
	return &RequestService{
		requests:  requests,
		employees: employees,
		now:       time.Now,
	}
}

// CreateRequestInput is a new workflow submission. Data carries the raw
// PROFILE_UPDATE payload and is ignored for other types.
type CreateRequestInput struct {
	Type      string
	StartDate *time.Time
	EndDate   *time.Time
	Reason    *string
	Data      json.RawMessage
}

func (in *CreateRequestInput) validate() error {
	verr := &ValidationError{}
	if !models.ValidRequestType(in.Type) {
		verr.add("type", "enum", "must be one of VACATION, PERMIT, SICK_LEAVE, HOME_OFFICE, PROFILE_UPDATE")
	}

	switch in.Type {
	case models.RequestTypeProfileUpdate:
		if len(in.Data) == 0 {
			verr.add("data", "required", "is required for PROFILE_UPDATE")
			break
		}
		changes, err := decodeProfileChanges(in.Data)
		if err != nil {
			verr.add("data", "schema", err.Error())
			break
		}
		if _, err := changes.Patch(); err != nil {
			verr.add("data.birthDate", "date", "must be YYYY-MM-DD")
		}
	default:
		if in.Type == "" {
			break
		}
		if in.StartDate == nil {
			verr.add("startDate", "required", "is required")
		}
		if in.EndDate == nil {
			verr.add("endDate", "required", "is required")
		}
		if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
			verr.add("endDate", "range", "must not be before startDate")
		}
	}

	return verr.errOrNil()
}

// Create validates and stores a new PENDING request for the caller.
func (s *RequestService) Create(ctx context.Context, tenantID, userID uuid.UUID, in CreateRequestInput) (*models.Request, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := s.now()
	req := &models.Request{
		RequestID: uuid.New(),
		UserID:    userID,
		TenantID:  tenantID,
		Type:      in.Type,
		Status:    models.RequestStatusPending,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		Reason:    in.Reason,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.Type == models.RequestTypeProfileUpdate {
		req.Data = in.Data
	}

	if err := s.requests.Create(ctx, req); err != nil {
		return nil, err
	}

	log.Info().
		Str("request_id", req.RequestID.String()).
		Str("type", req.Type).
		Msg("Request submitted")

	return req, nil
}

// ListMine returns the caller's own requests newest first.
func (s *RequestService) ListMine(ctx context.Context, tenantID, userID uuid.UUID) ([]*models.Request, error) {
	return s.requests.ListByUser(ctx, tenantID, userID)
}

// ListAll returns the tenant's requests for admin review, optionally
// narrowed by status and type.
func (s *RequestService) ListAll(ctx context.Context, tenantID uuid.UUID, filters store.RequestFilters) ([]*models.Request, error) {
	verr := &ValidationError{}
	if filters.Status != "" {
		switch filters.Status {
		case models.RequestStatusPending, models.RequestStatusApproved, models.RequestStatusRejected:
		default:
			verr.add("status", "enum", "must be PENDING, APPROVED or REJECTED")
		}
	}
	if filters.Type != "" && !models.ValidRequestType(filters.Type) {
		verr.add("type", "enum", "unknown request type")
	}
	if err := verr.errOrNil(); err != nil {
		return nil, err
	}

	return s.requests.List(ctx, tenantID, filters)
}

// UpdateStatus resolves a PENDING request to APPROVED or REJECTED. Approving
// a PROFILE_UPDATE applies the stored changes to the requester's employee
// row in the same transaction as the status flip; concurrent reviewers race
// on the storage lock and the loser gets ErrAlreadyProcessed.
func (s *RequestService) UpdateStatus(ctx context.Context, tenantID, requestID uuid.UUID, newStatus string, reason *string) (*models.Request, error) {
	if newStatus != models.RequestStatusApproved && newStatus != models.RequestStatusRejected {
		verr := &ValidationError{}
		verr.add("status", "enum", "must be APPROVED or REJECTED")
		return nil, verr
	}

	req, err := s.requests.Get(ctx, requestID)
	if err != nil {
		if errors.Is(err, store.ErrRequestNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if req.TenantID != tenantID {
		return nil, ErrCrossTenantAccess
	}
	if req.Status != models.RequestStatusPending {
		return nil, ErrAlreadyProcessed
	}

	upd := store.RequestUpdate{
		TenantID:  tenantID,
		RequestID: requestID,
		NewStatus: newStatus,
		Reason:    reason,
	}

	if newStatus == models.RequestStatusApproved && req.Type == models.RequestTypeProfileUpdate {
		changes, err := decodeProfileChanges(req.Data)
		if err != nil {
			return nil, err
		}
		patch, err := changes.Patch()
		if err != nil {
			return nil, err
		}
		if !patch.IsZero() {
			upd.Profile = patch
		}
	}

	updated, err := s.requests.UpdateStatus(ctx, upd)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrRequestNotFound):
			return nil, ErrNotFound
		case errors.Is(err, store.ErrRequestWrongTenant):
			return nil, ErrCrossTenantAccess
		case errors.Is(err, store.ErrRequestProcessed):
			return nil, ErrAlreadyProcessed
		}
		return nil, err
	}

	log.Info().
		Str("request_id", requestID.String()).
		Str("status", newStatus).
		Msg("Request resolved")

	return updated, nil
}

// Balance computes the caller's vacation balance from the hire date and
// approved VACATION requests.
func (s *RequestService) Balance(ctx context.Context, tenantID, userID uuid.UUID) (*VacationBalance, error) {
	emp, err := s.employees.GetByUserID(ctx, tenantID, userID)
	if err != nil {
		if errors.Is(err, store.ErrEmployeeNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	approved, err := s.requests.ListApprovedVacations(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}

	return ComputeVacationBalance(emp.HireDate, s.now(), approved), nil
}

// decodeProfileChanges parses a PROFILE_UPDATE payload strictly; unknown
// fields are rejected so arbitrary columns cannot ride along.
func decodeProfileChanges(data []byte) (*profileChanges, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var changes profileChanges
	if err := dec.Decode(&changes); err != nil {
		return nil, err
	}
	return &changes, nil
}

type profileChanges models.ProfileChanges

// Patch converts the wire payload to a typed patch, parsing the birth date.
func (c *profileChanges) Patch() (*models.ProfilePatch, error) {
	patch := &models.ProfilePatch{
		FirstName:      c.FirstName,
		MiddleName:     c.MiddleName,
		LastName:       c.LastName,
		SecondLastName: c.SecondLastName,
		PersonalEmail:  c.PersonalEmail,
		Phone:          c.Phone,
		Address:        c.Address,
		EmergencyName:  c.EmergencyName,
		EmergencyPhone: c.EmergencyPhone,
	}
	if c.BirthDate != nil {
		parsed, err := time.Parse("2006-01-02", *c.BirthDate)
		if err != nil {
			parsed, err = time.Parse(time.RFC3339, *c.BirthDate)
			if err != nil {
				return nil, err
			}
		}
		parsed = models.NormalizeDate(parsed)
		patch.BirthDate = &parsed
	}
	return patch, nil
}
