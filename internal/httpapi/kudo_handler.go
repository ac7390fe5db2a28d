package httpapi

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/emplix/emplix/internal/service"
)

// KudoHandler exposes peer recognition: sending, the personal wall and the
// tenant ranking.
type KudoHandler struct {
	kudos *service.KudoService
}

// NewKudoHandler creates the kudo handler.
func NewKudoHandler(kudos *service.KudoService) *KudoHandler {
	return &KudoHandler{kudos: kudos}
}

type createKudoBody struct {
	ReceiverID string `json:"receiverId"`
	Category   string `json:"category"`
	Message    string `json:"message"`
}

type kudoResponse struct {
	KudoID       string    `json:"kudoId"`
	SenderID     string    `json:"senderId"`
	SenderName   string    `json:"senderName,omitempty"`
	ReceiverID   string    `json:"receiverId"`
	ReceiverName string    `json:"receiverName,omitempty"`
	Category     string    `json:"category"`
	Message      string    `json:"message"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (h *KudoHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body createKudoBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	receiverID, err := uuid.Parse(body.ReceiverID)
	if err != nil {
		verr := &service.ValidationError{}
		verr.Fields = []service.FieldError{{Field: "receiverId", Rule: "uuid", Message: "must be a valid uuid"}}
		writeError(w, r, verr)
		return
	}

	claims := claimsFromContext(r.Context())
	kudo, err := h.kudos.Create(r.Context(), claims.TenantID, claims.UserID, receiverID, body.Category, body.Message)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, kudoResponse{
		KudoID:     kudo.KudoID.String(),
		SenderID:   kudo.SenderID.String(),
		ReceiverID: kudo.ReceiverID.String(),
		Category:   kudo.CategoryCode,
		Message:    kudo.Message,
		CreatedAt:  kudo.CreatedAt,
	})
}

type wallEntryResponse struct {
	kudoResponse
	Direction string `json:"direction"`
}

func (h *KudoHandler) Wall(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	entries, err := h.kudos.Wall(r.Context(), claims.TenantID, claims.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	res := make([]wallEntryResponse, 0, len(entries))
	for _, e := range entries {
		res = append(res, wallEntryResponse{
			kudoResponse: kudoResponse{
				KudoID:       e.Kudo.KudoID.String(),
				SenderID:     e.Kudo.SenderID.String(),
				SenderName:   e.Kudo.SenderName,
				ReceiverID:   e.Kudo.ReceiverID.String(),
				ReceiverName: e.Kudo.ReceiverName,
				Category:     e.Kudo.CategoryCode,
				Message:      e.Kudo.Message,
				CreatedAt:    e.Kudo.CreatedAt,
			},
			Direction: e.Direction,
		})
	}
	writeJSON(w, http.StatusOK, res)
}

type rankingEntryResponse struct {
	EmployeeID string         `json:"employeeId"`
	Name       string         `json:"name"`
	Position   string         `json:"position"`
	Count      int            `json:"totalKudos"`
	TotalScore float64        `json:"totalScore"`
	Breakdown  map[string]int `json:"breakdown"`
}

// Ranking returns the weighted recognition ranking. Admin only.
func (h *KudoHandler) Ranking(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	ranking, err := h.kudos.Ranking(r.Context(), claims.TenantID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	res := make([]rankingEntryResponse, 0, len(ranking))
	for _, e := range ranking {
		res = append(res, rankingEntryResponse{
			EmployeeID: e.EmployeeID.String(),
			Name:       e.Name,
			Position:   e.Position,
			Count:      e.Count,
			TotalScore: e.TotalScore.InexactFloat64(),
			Breakdown:  e.Breakdown,
		})
	}
	writeJSON(w, http.StatusOK, res)
}
