package service

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/emplix/emplix/internal/models"
	"github.com/emplix/emplix/internal/store"
)

//go:embed kudos_weights.yaml
var kudosWeightsYAML []byte

// defaultKudoWeight applies to categories without a configured weight.
var defaultKudoWeight = decimal.NewFromInt(1)

// loadKudoWeights parses the embedded category weight table.
func loadKudoWeights() (map[string]decimal.Decimal, error) {
	raw := map[string]float64{}
	if err := yaml.Unmarshal(kudosWeightsYAML, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse kudos weights: %w", err)
	}

	weights := make(map[string]decimal.Decimal, len(raw))
	for category, weight := range raw {
		weights[category] = decimal.NewFromFloat(weight)
	}
	return weights, nil
}

// KudoService records peer recognition and aggregates it into the tenant
// ranking.
type KudoService struct {
	kudos     store.KudoStore
	employees store.EmployeeStore
	weights   map[string]decimal.Decimal
	now       func() time.Time
}

// NewKudoService creates a kudo service with the embedded weight table.
func NewKudoService(kudos store.KudoStore, employees store.EmployeeStore) (*KudoService, error) {
	weights, err := loadKudoWeights()
	if err != nil {
		return nil, err
	}
	return &KudoService{
		kudos:     kudos,
		employees: employees,
		weights:   weights,
		now:       time.Now,
	}, nil
}

// Weight returns the score weight for a category.
func (s *KudoService) Weight(category string) decimal.Decimal {
	if w, ok := s.weights[category]; ok {
		return w
	}
	return defaultKudoWeight
}

// Create records a recognition event from the caller to another employee of
// the same tenant.
func (s *KudoService) Create(ctx context.Context, tenantID, senderUserID, receiverID uuid.UUID, category, message string) (*models.Kudo, error) {
	verr := &ValidationError{}
	if strings.TrimSpace(category) == "" {
		verr.add("category", "required", "is required")
	}
	if strings.TrimSpace(message) == "" {
		verr.add("message", "required", "is required")
	}
	if err := verr.errOrNil(); err != nil {
		return nil, err
	}

	sender, err := s.employees.GetByUserID(ctx, tenantID, senderUserID)
	if err != nil {
		if errors.Is(err, store.ErrEmployeeNotFound) {
			return nil, ErrSenderNotFound
		}
		return nil, err
	}
	if sender.Status != models.EmployeeStatusActive {
		return nil, ErrSenderNotFound
	}

	receiver, err := s.employees.Get(ctx, tenantID, receiverID)
	if err != nil {
		if errors.Is(err, store.ErrEmployeeNotFound) {
			return nil, ErrReceiverNotFound
		}
		return nil, err
	}

	if sender.EmployeeID == receiver.EmployeeID {
		return nil, ErrSelfRecognition
	}

	kudo := &models.Kudo{
		KudoID:       uuid.New(),
		TenantID:     tenantID,
		SenderID:     sender.EmployeeID,
		ReceiverID:   receiver.EmployeeID,
		CategoryCode: category,
		Message:      message,
		CreatedAt:    s.now(),
	}
	if err := s.kudos.Create(ctx, kudo); err != nil {
		return nil, err
	}

	log.Info().
		Str("sender_id", sender.EmployeeID.String()).
		Str("receiver_id", receiver.EmployeeID.String()).
		Str("category", category).
		Msg("Kudo recorded")

	return kudo, nil
}

// Kudo feed directions relative to the viewing employee.
const (
	KudoDirectionSent     = "SENT"
	KudoDirectionReceived = "RECEIVED"
)

// WallEntry is one event in an employee's recognition feed.
type WallEntry struct {
	Kudo      *models.Kudo
	Direction string
}

// Wall returns the caller's recognition feed, newest first, with each event
// tagged by direction.
func (s *KudoService) Wall(ctx context.Context, tenantID, userID uuid.UUID) ([]*WallEntry, error) {
	emp, err := s.employees.GetByUserID(ctx, tenantID, userID)
	if err != nil {
		if errors.Is(err, store.ErrEmployeeNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	kudos, err := s.kudos.ListByEmployee(ctx, tenantID, emp.EmployeeID)
	if err != nil {
		return nil, err
	}

	entries := make([]*WallEntry, 0, len(kudos))
	for _, k := range kudos {
		direction := KudoDirectionReceived
		if k.SenderID == emp.EmployeeID {
			direction = KudoDirectionSent
		}
		entries = append(entries, &WallEntry{Kudo: k, Direction: direction})
	}
	return entries, nil
}

// RankingEntry is one employee's aggregate in the recognition ranking.
// Breakdown counts received kudos per category.
type RankingEntry struct {
	EmployeeID uuid.UUID
	Name       string
	Position   string
	Count      int
	TotalScore decimal.Decimal
	Breakdown  map[string]int
}

// Ranking builds one row per ACTIVE employee of the tenant with their
// received kudos weighted by category, sorted by total score descending with
// name as tiebreaker. Employees without kudos appear with a zero count.
func (s *KudoService) Ranking(ctx context.Context, tenantID uuid.UUID) ([]*RankingEntry, error) {
	employees, err := s.employees.ListActive(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	kudos, err := s.kudos.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	byReceiver := make(map[uuid.UUID]*RankingEntry, len(employees))
	ranking := make([]*RankingEntry, 0, len(employees))
	for _, emp := range employees {
		entry := &RankingEntry{
			EmployeeID: emp.EmployeeID,
			Name:       emp.FullName(),
			Position:   "Sin cargo",
			TotalScore: decimal.Zero,
			Breakdown:  map[string]int{},
		}
		if emp.PositionName != nil {
			entry.Position = *emp.PositionName
		}
		byReceiver[emp.EmployeeID] = entry
		ranking = append(ranking, entry)
	}

	for _, k := range kudos {
		entry, ok := byReceiver[k.ReceiverID]
		if !ok {
			continue
		}
		entry.Count++
		entry.Breakdown[k.CategoryCode]++
		entry.TotalScore = entry.TotalScore.Add(s.Weight(k.CategoryCode))
	}

	sort.Slice(ranking, func(i, j int) bool {
		if !ranking[i].TotalScore.Equal(ranking[j].TotalScore) {
			return ranking[i].TotalScore.GreaterThan(ranking[j].TotalScore)
		}
		return ranking[i].Name < ranking[j].Name
	})

	return ranking, nil
}
