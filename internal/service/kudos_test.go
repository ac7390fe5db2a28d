package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/emplix/emplix/internal/models"
)

func newKudoService(t *testing.T, f *fixture) *KudoService {
	t.Helper()
	svc, err := NewKudoService(f.kudos, f.employees)
	require.NoError(t, err)
	return svc
}

func TestKudoWeights(t *testing.T) {
	f := newFixture(t)
	svc := newKudoService(t, f)

	tests := []struct {
		category string
		want     string
	}{
		{category: "TEAMWORK", want: "2"},
		{category: "CLIENT_FOCUS", want: "2.5"},
		{category: "RESULTS", want: "3"},
		{category: "INNOVATION", want: "3.5"},
		{category: "LEADERSHIP", want: "4"},
		{category: "SOMETHING_ELSE", want: "1"},
	}
	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			require.Equal(t, tt.want, svc.Weight(tt.category).String())
		})
	}
}

func TestCreateKudo(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	senderUser, senderEmp := f.seedEmployee(t, "Ana", "Lopez", date(2023, 1, 15))
	_, receiverEmp := f.seedEmployee(t, "Bruno", "Mora", date(2023, 2, 1))
	svc := newKudoService(t, f)

	t.Run("happy path", func(t *testing.T) {
		kudo, err := svc.Create(ctx, f.tenantID, senderUser, receiverEmp, "TEAMWORK", "great sprint")
		require.NoError(t, err)
		require.Equal(t, senderEmp, kudo.SenderID)
		require.Equal(t, receiverEmp, kudo.ReceiverID)
	})

	t.Run("self recognition", func(t *testing.T) {
		_, err := svc.Create(ctx, f.tenantID, senderUser, senderEmp, "TEAMWORK", "I am great")
		require.ErrorIs(t, err, ErrSelfRecognition)
	})

	t.Run("unknown receiver", func(t *testing.T) {
		_, err := svc.Create(ctx, f.tenantID, senderUser, uuid.New(), "TEAMWORK", "hello")
		require.ErrorIs(t, err, ErrReceiverNotFound)
	})

	t.Run("unknown sender", func(t *testing.T) {
		_, err := svc.Create(ctx, f.tenantID, uuid.New(), receiverEmp, "TEAMWORK", "hello")
		require.ErrorIs(t, err, ErrSenderNotFound)
	})

	t.Run("inactive sender", func(t *testing.T) {
		inactiveUser := &models.User{
			UserID:   uuid.New(),
			TenantID: f.tenantID,
			Email:    "gone@example.com",
			Role:     models.RoleUser,
			IsActive: true,
			Provider: models.ProviderLocal,
		}
		inactiveEmp := &models.Employee{
			EmployeeID: uuid.New(),
			UserID:     inactiveUser.UserID,
			TenantID:   f.tenantID,
			FirstName:  "Carla",
			LastName:   "Ruiz",
			HireDate:   date(2022, 6, 1),
			Status:     models.EmployeeStatusInactive,
		}
		require.NoError(t, f.users.CreateWithEmployee(ctx, inactiveUser, inactiveEmp, nil))

		_, err := svc.Create(ctx, f.tenantID, inactiveUser.UserID, receiverEmp, "TEAMWORK", "hello")
		require.ErrorIs(t, err, ErrSenderNotFound)
	})

	t.Run("empty message", func(t *testing.T) {
		_, err := svc.Create(ctx, f.tenantID, senderUser, receiverEmp, "TEAMWORK", "  ")
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
	})
}

func TestKudoWall(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	anaUser, anaEmp := f.seedEmployee(t, "Ana", "Lopez", date(2023, 1, 15))
	brunoUser, brunoEmp := f.seedEmployee(t, "Bruno", "Mora", date(2023, 2, 1))
	svc := newKudoService(t, f)

	_, err := svc.Create(ctx, f.tenantID, anaUser, brunoEmp, "TEAMWORK", "sent by ana")
	require.NoError(t, err)
	_, err = svc.Create(ctx, f.tenantID, brunoUser, anaEmp, "RESULTS", "received by ana")
	require.NoError(t, err)

	wall, err := svc.Wall(ctx, f.tenantID, anaUser)
	require.NoError(t, err)
	require.Len(t, wall, 2)

	directions := map[string]string{}
	for _, entry := range wall {
		directions[entry.Kudo.Message] = entry.Direction
	}
	require.Equal(t, KudoDirectionSent, directions["sent by ana"])
	require.Equal(t, KudoDirectionReceived, directions["received by ana"])
}

func TestKudoRanking(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	anaUser, anaEmp := f.seedEmployee(t, "Ana", "Lopez", date(2023, 1, 15))
	brunoUser, brunoEmp := f.seedEmployee(t, "Bruno", "Mora", date(2023, 2, 1))
	_, claraEmp := f.seedEmployee(t, "Clara", "Diaz", date(2023, 3, 1))
	svc := newKudoService(t, f)

	// Bruno receives TEAMWORK (2) x2 + RESULTS (3) = 7.
	for _, category := range []string{"TEAMWORK", "TEAMWORK", "RESULTS"} {
		_, err := svc.Create(ctx, f.tenantID, anaUser, brunoEmp, category, "nice")
		require.NoError(t, err)
	}
	// Ana receives LEADERSHIP (4).
	_, err := svc.Create(ctx, f.tenantID, brunoUser, anaEmp, "LEADERSHIP", "thanks")
	require.NoError(t, err)

	ranking, err := svc.Ranking(ctx, f.tenantID)
	require.NoError(t, err)
	// One row per ACTIVE employee, including Clara who received nothing.
	require.Len(t, ranking, 3)

	require.Equal(t, brunoEmp, ranking[0].EmployeeID)
	require.Equal(t, 3, ranking[0].Count)
	require.Equal(t, "7", ranking[0].TotalScore.String())
	require.Equal(t, map[string]int{"TEAMWORK": 2, "RESULTS": 1}, ranking[0].Breakdown)
	require.Equal(t, "Sin cargo", ranking[0].Position)

	require.Equal(t, anaEmp, ranking[1].EmployeeID)
	require.Equal(t, 1, ranking[1].Count)
	require.Equal(t, "4", ranking[1].TotalScore.String())

	require.Equal(t, claraEmp, ranking[2].EmployeeID)
	require.Equal(t, 0, ranking[2].Count)
	require.Equal(t, "0", ranking[2].TotalScore.String())
	require.Empty(t, ranking[2].Breakdown)
}
