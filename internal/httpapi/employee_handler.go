package httpapi

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/emplix/emplix/internal/models"
	"github.com/emplix/emplix/internal/service"
)

// EmployeeHandler exposes the directory, onboarding, administrative
// assignment and labor data. All write operations are admin only.
type EmployeeHandler struct {
	employees *service.EmployeeService
}

// NewEmployeeHandler creates the employee handler.
func NewEmployeeHandler(employees *service.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{employees: employees}
}

func pathEmployeeID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		verr := &service.ValidationError{}
		verr.Fields = []service.FieldError{{Field: "id", Rule: "uuid", Message: "must be a valid uuid"}}
		return uuid.Nil, verr
	}
	return id, nil
}

func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	employees, err := h.employees.List(r.Context(), claims.TenantID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	res := make([]employeeResponse, 0, len(employees))
	for _, emp := range employees {
		res = append(res, newEmployeeResponse(emp))
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *EmployeeHandler) Get(w http.ResponseWriter, r *http.Request) {
	employeeID, err := pathEmployeeID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	claims := claimsFromContext(r.Context())
	emp, err := h.employees.Get(r.Context(), claims.TenantID, employeeID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newEmployeeResponse(emp))
}

type createEmployeeBody struct {
	Email      string  `json:"email"`
	Password   string  `json:"password"`
	FirstName  string  `json:"firstName"`
	LastName   string  `json:"lastName"`
	DocumentID *string `json:"documentId,omitempty"`
	HireDate   *string `json:"hireDate,omitempty"`
	Phone      *string `json:"phone,omitempty"`

	ContractTypeID *string `json:"contractTypeId,omitempty"`
	WorkShiftID    *string `json:"workShiftId,omitempty"`
	Salary         *string `json:"salary,omitempty"`
	StartDate      *string `json:"startDate,omitempty"`
}

func parseUUIDField(raw *string, field string, verr *service.ValidationError) *uuid.UUID {
	if raw == nil {
		return nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		verr.Fields = append(verr.Fields, service.FieldError{Field: field, Rule: "uuid", Message: "must be a valid uuid"})
		return nil
	}
	return &id
}

func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body createEmployeeBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	verr := &service.ValidationError{}
	in := service.CreateEmployeeInput{
		Email:          body.Email,
		Password:       body.Password,
		FirstName:      body.FirstName,
		LastName:       body.LastName,
		DocumentID:     body.DocumentID,
		Phone:          body.Phone,
		HireDate:       parseDateField(body.HireDate, "hireDate", verr),
		ContractTypeID: parseUUIDField(body.ContractTypeID, "contractTypeId", verr),
		WorkShiftID:    parseUUIDField(body.WorkShiftID, "workShiftId", verr),
		Salary:         body.Salary,
		StartDate:      parseDateField(body.StartDate, "startDate", verr),
	}
	if len(verr.Fields) > 0 {
		writeError(w, r, verr)
		return
	}

	claims := claimsFromContext(r.Context())
	emp, err := h.employees.Create(r.Context(), claims.TenantID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, newEmployeeResponse(emp))
}

type assignBody struct {
	DepartmentID *string `json:"departmentId,omitempty"`
	PositionID   *string `json:"positionId,omitempty"`
	SupervisorID *string `json:"supervisorId,omitempty"`
}

func (h *EmployeeHandler) Assign(w http.ResponseWriter, r *http.Request) {
	employeeID, err := pathEmployeeID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var body assignBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	verr := &service.ValidationError{}
	in := service.AssignInput{
		DepartmentID: parseUUIDField(body.DepartmentID, "departmentId", verr),
		PositionID:   parseUUIDField(body.PositionID, "positionId", verr),
		SupervisorID: parseUUIDField(body.SupervisorID, "supervisorId", verr),
	}
	if len(verr.Fields) > 0 {
		writeError(w, r, verr)
		return
	}

	claims := claimsFromContext(r.Context())
	emp, err := h.employees.Assign(r.Context(), claims.TenantID, employeeID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newEmployeeResponse(emp))
}

type laborDataBody struct {
	ContractTypeID *string `json:"contractTypeId,omitempty"`
	WorkShiftID    *string `json:"workShiftId,omitempty"`
	Salary         *string `json:"salary,omitempty"`
	StartDate      *string `json:"startDate,omitempty"`
}

type laborDataResponse struct {
	LaborDataID    string  `json:"laborDataId"`
	EmployeeID     string  `json:"employeeId"`
	ContractTypeID *string `json:"contractTypeId,omitempty"`
	WorkShiftID    *string `json:"workShiftId,omitempty"`
	Salary         *string `json:"salary,omitempty"`
	StartDate      *string `json:"startDate,omitempty"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func newLaborDataResponse(labor *models.LaborData) laborDataResponse {
	res := laborDataResponse{
		LaborDataID: labor.LaborDataID.String(),
		EmployeeID:  labor.EmployeeID.String(),
		Salary:      labor.Salary,
		UpdatedAt:   labor.UpdatedAt,
	}
	if labor.ContractTypeID != nil {
		s := labor.ContractTypeID.String()
		res.ContractTypeID = &s
	}
	if labor.WorkShiftID != nil {
		s := labor.WorkShiftID.String()
		res.WorkShiftID = &s
	}
	if labor.StartDate != nil {
		s := labor.StartDate.Format("2006-01-02")
		res.StartDate = &s
	}
	return res
}

func (h *EmployeeHandler) GetLaborData(w http.ResponseWriter, r *http.Request) {
	employeeID, err := pathEmployeeID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	claims := claimsFromContext(r.Context())
	labor, err := h.employees.GetLaborData(r.Context(), claims.TenantID, employeeID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newLaborDataResponse(labor))
}

func (h *EmployeeHandler) UpsertLaborData(w http.ResponseWriter, r *http.Request) {
	employeeID, err := pathEmployeeID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var body laborDataBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	verr := &service.ValidationError{}
	in := service.LaborDataInput{
		ContractTypeID: parseUUIDField(body.ContractTypeID, "contractTypeId", verr),
		WorkShiftID:    parseUUIDField(body.WorkShiftID, "workShiftId", verr),
		Salary:         body.Salary,
		StartDate:      parseDateField(body.StartDate, "startDate", verr),
	}
	if len(verr.Fields) > 0 {
		writeError(w, r, verr)
		return
	}

	claims := claimsFromContext(r.Context())
	labor, err := h.employees.UpsertLaborData(r.Context(), claims.TenantID, employeeID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newLaborDataResponse(labor))
}
