// seed carga un directorio de demostración (usuarios, proyectos, asignaciones y
// gastos) en el almacenamiento configurado y muestra un JWT de desarrollo por usuario.
//
// Uso: STORE_DRIVER=postgres JWT_SECRET=... go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Recursos-api/internal/application/allocation"
	"github.com/jhoicas/Recursos-api/internal/application/auth"
	"github.com/jhoicas/Recursos-api/internal/application/dto"
	"github.com/jhoicas/Recursos-api/internal/application/expense"
	"github.com/jhoicas/Recursos-api/internal/application/progress"
	"github.com/jhoicas/Recursos-api/internal/application/usecase"
	"github.com/jhoicas/Recursos-api/internal/domain/entity"
	"github.com/jhoicas/Recursos-api/internal/infrastructure/storage"
	"github.com/jhoicas/Recursos-api/pkg/config"
	"github.com/jhoicas/Recursos-api/pkg/logger"
)

type seedUser struct {
	role, name, department, designation string
	skills                              []string
}

var demoUsers = []seedUser{
	{entity.RoleAdmin, "Administrador General", "Dirección", "Administrador", nil},
	{entity.RoleManager, "Marta Gómez", "Ingeniería", "Gerente de proyecto", []string{"scrum"}},
	{entity.RoleManager, "Julián Pardo", "Operaciones", "Gerente de proyecto", []string{"pmp"}},
	{entity.RoleEmployee, "Ana Ruiz", "Ingeniería", "Desarrolladora backend", []string{"go", "postgres"}},
	{entity.RoleEmployee, "Luis Díaz", "Ingeniería", "Desarrollador frontend", []string{"react"}},
	{entity.RoleEmployee, "Camila Torres", "Operaciones", "Analista", []string{"sql"}},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	if cfg.JWT.Secret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET es obligatorio para emitir los tokens de demostración")
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "seed"})

	ctx := context.Background()
	store, err := storage.Open(ctx, cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir almacenamiento: %v\n", err)
		os.Exit(1)
	}
	defer store.Close(ctx)
	if cfg.Store.Driver == config.StoreMemory {
		log.Warn().Msg("STORE_DRIVER=memory: los datos se pierden al terminar el proceso")
	}

	if err := seed(ctx, store, cfg.JWT, log); err != nil {
		fmt.Fprintf(os.Stderr, "Seed: %v\n", err)
		os.Exit(1)
	}
}

func seed(ctx context.Context, store *storage.Store, jwtCfg config.JWTConfig, log *logger.Logger) error {
	users := usecase.NewUserUseCase(store.Users, store.Projects)
	projects := usecase.NewProjectUseCase(store.Projects, store.Users, nil, log)
	allocations := allocation.NewUseCase(store.Projects, store.Users, nil, nil, nil, log)
	expenses := expense.NewUseCase(store.Projects, nil)
	progressUC := progress.NewUseCase(store.Projects, nil)
	tokens := auth.NewAuthUseCase(store.Users, auth.JWTConfig{
		Secret:     jwtCfg.Secret,
		ExpMinutes: jwtCfg.Expiration,
		Issuer:     jwtCfg.Issuer,
	})

	created := make([]dto.UserResponse, 0, len(demoUsers))
	for _, u := range demoUsers {
		out, err := users.Create(ctx, dto.CreateUserRequest{
			Role:        u.role,
			FullName:    u.name,
			Department:  u.department,
			Designation: u.designation,
			Skills:      u.skills,
		})
		if err != nil {
			return fmt.Errorf("usuario %s: %w", u.name, err)
		}
		created = append(created, *out)
	}
	marta, julian := created[1], created[2]
	ana, luis, camila := created[3], created[4], created[5]

	portal, err := projects.Create(ctx, marta.ID, marta.Role, dto.CreateProjectRequest{
		Name:        "Portal de clientes",
		Description: "Renovación del portal de autogestión",
		Budget:      decimal.NewFromInt(1000),
		StartDate:   "2026-01-15",
		EndDate:     "2026-09-30",
	})
	if err != nil {
		return fmt.Errorf("proyecto portal: %w", err)
	}
	migracion, err := projects.Create(ctx, julian.ID, julian.Role, dto.CreateProjectRequest{
		Name:   "Migración de datos",
		Budget: decimal.NewFromInt(5000),
	})
	if err != nil {
		return fmt.Errorf("proyecto migración: %w", err)
	}

	// Ana queda sobreasignada (60 + 70) para que el dashboard muestre el aviso.
	plan := []struct {
		projectID, employeeID, role string
		pct                         int64
	}{
		{portal.ID, ana.ID, "backend", 60},
		{portal.ID, luis.ID, "frontend", 80},
		{migracion.ID, ana.ID, "etl", 70},
		{migracion.ID, camila.ID, "analista", 50},
	}
	for _, a := range plan {
		if _, err := allocations.Allocate(ctx, a.projectID, dto.AllocateRequest{
			EmployeeID:           a.employeeID,
			AllocationPercentage: decimal.NewFromInt(a.pct),
			Role:                 a.role,
		}); err != nil {
			return fmt.Errorf("asignación %s/%s: %w", a.projectID, a.employeeID, err)
		}
	}

	for _, e := range []dto.AddExpenseRequest{
		{Description: "Licencias de diseño", Amount: decimal.NewFromInt(300), Category: "materials"},
		{Description: "Horas de consultoría", Amount: decimal.NewFromInt(250), Category: "labor"},
	} {
		if _, err := expenses.AddExpense(ctx, portal.ID, e); err != nil {
			return fmt.Errorf("gasto: %w", err)
		}
	}
	if _, err := progressUC.UpdateProgress(ctx, portal.ID, 45, "Sprint 3 cerrado"); err != nil {
		return fmt.Errorf("avance: %w", err)
	}

	fmt.Println("Usuarios de demostración:")
	for _, u := range created {
		tok, err := tokens.IssueToken(ctx, u.ID)
		if err != nil {
			return fmt.Errorf("token %s: %w", u.FullName, err)
		}
		fmt.Printf("  %-9s %-22s %s\n    Bearer %s\n", u.Role, u.FullName, u.ID, tok.Token)
	}
	fmt.Printf("Proyectos: %s (%s), %s (%s)\n", portal.Name, portal.ID, migracion.Name, migracion.ID)
	return nil
}
