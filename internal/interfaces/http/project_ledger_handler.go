package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Recursos-api/internal/application/dto"
	"github.com/jhoicas/Recursos-api/internal/application/expense"
	"github.com/jhoicas/Recursos-api/internal/application/progress"
)

// ProjectLedgerHandler maneja gastos y avance de un proyecto (protegido).
type ProjectLedgerHandler struct {
	expenses *expense.UseCase
	progress *progress.UseCase
	v        *Validator
}

// NewProjectLedgerHandler construye el handler.
func NewProjectLedgerHandler(expenses *expense.UseCase, progress *progress.UseCase, v *Validator) *ProjectLedgerHandler {
	return &ProjectLedgerHandler{expenses: expenses, progress: progress, v: v}
}

// AddExpense godoc
// @Summary      Registrar gasto
// @Tags         expenses
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID del proyecto"
// @Param        body  body  dto.AddExpenseRequest  true  "Gasto"
// @Success      201   {object}  dto.ExpenseDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/projects/{id}/expenses [post]
func (h *ProjectLedgerHandler) AddExpense(c *fiber.Ctx) error {
	var in dto.AddExpenseRequest
	if ok, err := h.v.bind(c, &in); !ok {
		return err
	}
	out, err := h.expenses.AddExpense(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListExpenses godoc
// @Summary      Gastos del proyecto con totales
// @Tags         expenses
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del proyecto"
// @Success      200  {object}  dto.ExpenseSummaryDTO
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/projects/{id}/expenses [get]
func (h *ProjectLedgerHandler) ListExpenses(c *fiber.Ctx) error {
	out, err := h.expenses.ListExpenses(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// UpdateProgress godoc
// @Summary      Actualizar avance
// @Description  Sobrescribe el avance anterior; no se guarda historial.
// @Tags         progress
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID del proyecto"
// @Param        body  body  dto.UpdateProgressRequest  true  "Avance"
// @Success      200   {object}  dto.ProgressDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/projects/{id}/progress [put]
func (h *ProjectLedgerHandler) UpdateProgress(c *fiber.Ctx) error {
	var in dto.UpdateProgressRequest
	if ok, err := h.v.bind(c, &in); !ok {
		return err
	}
	out, err := h.progress.UpdateProgress(c.UserContext(), c.Params("id"), *in.Progress, in.Notes)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
