package httpapi

import (
	"net/http"
	"time"

	"github.com/emplix/emplix/internal/models"
	"github.com/emplix/emplix/internal/service"
	"github.com/emplix/emplix/internal/tenant"
)

// AuthHandler exposes login, registration, federated login and the caller's
// profile.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler creates the auth handler.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      userResponse `json:"user"`
}

type userResponse struct {
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Provider  string `json:"provider"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

func newSessionResponse(res *service.LoginResult) sessionResponse {
	return sessionResponse{
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
		User: userResponse{
			UserID:    res.User.UserID.String(),
			Email:     res.User.Email,
			Role:      res.User.Role,
			Provider:  res.User.Provider,
			FirstName: res.FirstName,
			LastName:  res.LastName,
		},
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	t := tenant.FromContext(r.Context())
	res, err := h.auth.Login(r.Context(), t.TenantID, req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newSessionResponse(res))
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	t := tenant.FromContext(r.Context())
	user, err := h.auth.Register(r.Context(), t.TenantID, service.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, userResponse{
		UserID:   user.UserID.String(),
		Email:    user.Email,
		Role:     user.Role,
		Provider: user.Provider,
	})
}

type federatedLoginRequest struct {
	Token string `json:"token"`
}

func (h *AuthHandler) FederatedLogin(w http.ResponseWriter, r *http.Request) {
	var req federatedLoginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	t := tenant.FromContext(r.Context())
	res, err := h.auth.FederatedLogin(r.Context(), t.TenantID, req.Token)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newSessionResponse(res))
}

type profileResponse struct {
	User     userResponse      `json:"user"`
	Employee *employeeResponse `json:"employee,omitempty"`
}

func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	profile, err := h.auth.GetProfile(r.Context(), claims.TenantID, claims.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	res := profileResponse{
		User: userResponse{
			UserID:   profile.User.UserID.String(),
			Email:    profile.User.Email,
			Role:     profile.User.Role,
			Provider: profile.User.Provider,
		},
	}
	if profile.Employee != nil {
		emp := newEmployeeResponse(profile.Employee)
		res.Employee = &emp
		res.User.FirstName = profile.Employee.FirstName
		res.User.LastName = profile.Employee.LastName
	}

	writeJSON(w, http.StatusOK, res)
}

// employeeResponse is the wire shape of an employee profile, shared by the
// auth and employee handlers.
type employeeResponse struct {
	EmployeeID     string    `json:"employeeId"`
	UserID         string    `json:"userId"`
	FirstName      string    `json:"firstName"`
	MiddleName     *string   `json:"middleName,omitempty"`
	LastName       string    `json:"lastName"`
	SecondLastName *string   `json:"secondLastName,omitempty"`
	FullName       string    `json:"fullName"`
	Initials       string    `json:"initials"`
	DocumentID     *string   `json:"documentId,omitempty"`
	BirthDate      *string   `json:"birthDate,omitempty"`
	HireDate       string    `json:"hireDate"`
	Status         string    `json:"status"`
	PersonalEmail  *string   `json:"personalEmail,omitempty"`
	Phone          *string   `json:"phone,omitempty"`
	Address        *string   `json:"address,omitempty"`
	EmergencyName  *string   `json:"emergencyName,omitempty"`
	EmergencyPhone *string   `json:"emergencyPhone,omitempty"`
	Department     *refNames `json:"department,omitempty"`
	Position       *refNames `json:"position,omitempty"`
	Supervisor     *refNames `json:"supervisor,omitempty"`
}

type refNames struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

func newEmployeeResponse(emp *models.Employee) employeeResponse {
	res := employeeResponse{
		EmployeeID:     emp.EmployeeID.String(),
		UserID:         emp.UserID.String(),
		FirstName:      emp.FirstName,
		MiddleName:     emp.MiddleName,
		LastName:       emp.LastName,
		SecondLastName: emp.SecondLastName,
		FullName:       emp.FullName(),
		Initials:       emp.Initials(),
		DocumentID:     emp.DocumentID,
		HireDate:       emp.HireDate.Format("2006-01-02"),
		Status:         emp.Status,
		PersonalEmail:  emp.PersonalEmail,
		Phone:          emp.Phone,
		Address:        emp.Address,
		EmergencyName:  emp.EmergencyName,
		EmergencyPhone: emp.EmergencyPhone,
	}
	if emp.BirthDate != nil {
		s := emp.BirthDate.Format("2006-01-02")
		res.BirthDate = &s
	}
	if emp.DepartmentID != nil {
		res.Department = &refNames{ID: emp.DepartmentID.String()}
		if emp.DepartmentName != nil {
			res.Department.Name = *emp.DepartmentName
		}
	}
	if emp.PositionID != nil {
		res.Position = &refNames{ID: emp.PositionID.String()}
		if emp.PositionName != nil {
			res.Position.Name = *emp.PositionName
		}
	}
	if emp.SupervisorID != nil {
		res.Supervisor = &refNames{ID: emp.SupervisorID.String()}
		if emp.SupervisorName != nil {
			res.Supervisor.Name = *emp.SupervisorName
		}
	}
	return res
}
