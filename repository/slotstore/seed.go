package slotstore

import "github.com/fastygo/taskboard/domain"

// Fixture loaded by Initialize into an empty medium. Credentials are stored
// in clear on purpose; this store is a local simulation, not an identity provider.
var (
	seedUsers = []domain.User{
		{ID: 1, Username: "Admin_Jefe", Password: "admin123", Role: domain.RoleAdmin},
		{ID: 2, Username: "Dev_Junior", Password: "hola123", Role: domain.RoleNormal},
		{ID: 3, Username: "QA_Tester", Password: "test123", Role: domain.RoleNormal},
	}

	seedTasks = []domain.Task{
		{
			ID:         1,
			Title:      "Configurar Servidor",
			Status:     domain.StatusCompleted,
			CreatedAt:  domain.MustParseDate("2026-01-15"),
			DueAt:      domain.MustParseDate("2026-01-20"),
			AssigneeID: 1,
		},
		{
			ID:         2,
			Title:      "Diseñar Frontend",
			Status:     domain.StatusPending,
			CreatedAt:  domain.MustParseDate("2026-01-20"),
			DueAt:      domain.MustParseDate("2026-02-01"),
			AssigneeID: 2,
		},
		{
			ID:         3,
			Title:      "Crear API Rest",
			Status:     domain.StatusPending,
			CreatedAt:  domain.MustParseDate("2026-02-05"),
			DueAt:      domain.MustParseDate("2026-02-10"),
			AssigneeID: 2,
		},
		{
			ID:         4,
			Title:      "Pruebas Unitarias",
			Status:     domain.StatusPending,
			CreatedAt:  domain.MustParseDate("2026-01-10"),
			DueAt:      domain.MustParseDate("2026-01-25"),
			AssigneeID: 3,
		},
		{
			ID:         5,
			Title:      "Documentación Final",
			Status:     domain.StatusPending,
			CreatedAt:  domain.MustParseDate("2026-02-06"),
			DueAt:      domain.MustParseDate("2026-02-20"),
			AssigneeID: 1,
		},
	}

	seedCounter = 5
)

// SeedUsers returns a copy of the fixture users.
func SeedUsers() []domain.User {
	return append([]domain.User(nil), seedUsers...)
}

// SeedTasks returns a copy of the fixture tasks.
func SeedTasks() []domain.Task {
	return append([]domain.Task(nil), seedTasks...)
}
