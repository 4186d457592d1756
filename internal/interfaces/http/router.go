package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jhoicas/Recursos-api/internal/application/allocation"
	"github.com/jhoicas/Recursos-api/internal/application/analytics"
	"github.com/jhoicas/Recursos-api/internal/application/expense"
	"github.com/jhoicas/Recursos-api/internal/application/progress"
	"github.com/jhoicas/Recursos-api/internal/application/usecase"
	"github.com/jhoicas/Recursos-api/internal/domain/entity"
	"github.com/jhoicas/Recursos-api/internal/infrastructure/metrics"
	"github.com/jhoicas/Recursos-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AppName     string
	UserUC      *usecase.UserUseCase
	ProjectUC   *usecase.ProjectUseCase
	Allocations *allocation.UseCase
	Expenses    *expense.UseCase
	Progress    *progress.UseCase
	KPIs        *analytics.KPIUseCase
	Reports     *analytics.ReportUseCase
	Metrics     *metrics.Metrics // nil = sin /metrics
	Log         *logger.Logger
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) error {
	v, err := NewValidator()
	if err != nil {
		return err
	}

	app.Use(RequestLogger(deps.Log))
	if deps.Metrics != nil {
		app.Use(deps.Metrics.Middleware())
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))
	}
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.AppName})
	})

	const (
		admin    = entity.RoleAdmin
		manager  = entity.RoleManager
		employee = entity.RoleEmployee
	)

	// Todas las rutas de /api requieren Bearer Token.
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// KPIs
	kpiHandler := NewKPIHandler(deps.KPIs, deps.Reports)
	kpis := api.Group("/kpis")
	kpis.Get("/organization", RequireRole(admin), kpiHandler.Organization)
	kpis.Get("/projects/:id", RequireRole(admin, manager, employee), kpiHandler.Project)
	kpis.Get("/managers/:id", RequireRole(admin, manager), SelfOrRoles("id", admin), kpiHandler.ManagerDashboard)
	kpis.Get("/managers/:id/report.pdf", RequireRole(admin, manager), SelfOrRoles("id", admin), kpiHandler.ManagerReport)

	// Projects
	projectHandler := NewProjectHandler(deps.ProjectUC, v)
	allocationHandler := NewAllocationHandler(deps.Allocations, v)
	ledgerHandler := NewProjectLedgerHandler(deps.Expenses, deps.Progress, v)
	owner := ProjectAccess(deps.ProjectUC)

	projects := api.Group("/projects")
	projects.Get("/", RequireRole(admin, manager), projectHandler.List)
	projects.Post("/", RequireRole(admin, manager), projectHandler.Create)
	projects.Get("/:id", RequireRole(admin, manager, employee), projectHandler.GetByID)
	projects.Put("/:id", RequireRole(admin, manager), owner, projectHandler.Update)
	projects.Delete("/:id", RequireRole(admin, manager), owner, projectHandler.Delete)

	projects.Post("/:id/allocations", RequireRole(admin, manager), owner, allocationHandler.Allocate)
	projects.Patch("/:id/allocations/:employeeId", RequireRole(admin, manager), owner, allocationHandler.Update)
	projects.Delete("/:id/allocations/:employeeId", RequireRole(admin, manager), owner, allocationHandler.Remove)
	projects.Post("/:id/allocations/:employeeId/refresh-name", RequireRole(admin, manager), owner, allocationHandler.RefreshName)

	projects.Post("/:id/expenses", RequireRole(admin, manager), owner, ledgerHandler.AddExpense)
	projects.Get("/:id/expenses", RequireRole(admin, manager), owner, ledgerHandler.ListExpenses)
	projects.Put("/:id/progress", RequireRole(admin, manager), owner, ledgerHandler.UpdateProgress)

	// Employees
	selfOrStaff := SelfOrRoles("id", admin, manager)
	api.Get("/employees/:id/allocations", selfOrStaff, allocationHandler.EmployeeAllocations)
	api.Get("/employees/:id/utilization", selfOrStaff, allocationHandler.EmployeeUtilization)

	// Users
	userHandler := NewUserHandler(deps.UserUC, v)
	users := api.Group("/users")
	users.Get("/", RequireRole(admin, manager), userHandler.List)
	users.Post("/", RequireRole(admin), userHandler.Create)
	users.Get("/:id", selfOrStaff, userHandler.GetByID)
	users.Put("/:id", RequireRole(admin), userHandler.Update)
	users.Delete("/:id", RequireRole(admin), userHandler.Delete)

	self := SelfOrRoles("id", admin)
	users.Post("/:id/skills", self, userHandler.AddSkill)
	users.Delete("/:id/skills", self, userHandler.RemoveSkill)
	users.Post("/:id/certifications", self, userHandler.AddCertification)
	users.Delete("/:id/certifications", self, userHandler.RemoveCertification)

	return nil
}
