package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/field-service/internal/dbtest"
	"github.com/BruksfildServices01/field-service/internal/models"
)

type fixture struct {
	db          *gorm.DB
	customer    models.Customer
	workers     []models.User
	appointment models.Appointment
}

func newFixture(t *testing.T, workers int) fixture {
	t.Helper()

	db := dbtest.Open(t)
	f := fixture{db: db}

	f.customer = models.Customer{Name: "Aisha", Phone: "60123456789"}
	require.NoError(t, db.Create(&f.customer).Error)

	for i := 0; i < workers; i++ {
		u := models.User{
			Name:         "worker",
			Email:        "worker" + string(rune('a'+i)) + "@example.com",
			PasswordHash: "x",
			Role:         models.RoleWorker,
		}
		require.NoError(t, db.Create(&u).Error)
		f.workers = append(f.workers, u)
	}

	repo := NewAppointmentGormRepository(db)
	f.appointment = models.Appointment{
		CustomerID: f.customer.ID,
		Title:      "Aircon service",
		Date:       time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		StartTime:  "09:00",
		EndTime:    "11:00",
		Status:     "confirmed",
	}
	require.NoError(t, repo.CreateAppointment(t.Context(), &f.appointment))

	return f
}
