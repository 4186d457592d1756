package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Recursos-api/internal/application/allocation"
	"github.com/jhoicas/Recursos-api/internal/application/dto"
)

// AllocationHandler maneja las asignaciones de empleados a proyectos y la
// utilización por empleado (protegido).
type AllocationHandler struct {
	uc *allocation.UseCase
	v  *Validator
}

// NewAllocationHandler construye el handler.
func NewAllocationHandler(uc *allocation.UseCase, v *Validator) *AllocationHandler {
	return &AllocationHandler{uc: uc, v: v}
}

// Allocate godoc
// @Summary      Asignar empleado a proyecto
// @Description  Responde con la asignación y, si el empleado supera el 100 %, un aviso.
// @Tags         allocations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID del proyecto"
// @Param        body  body  dto.AllocateRequest  true  "Asignación"
// @Success      201   {object}  dto.AllocationResult
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/projects/{id}/allocations [post]
func (h *AllocationHandler) Allocate(c *fiber.Ctx) error {
	var in dto.AllocateRequest
	if ok, err := h.v.bind(c, &in); !ok {
		return err
	}
	out, err := h.uc.Allocate(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Editar asignación
// @Tags         allocations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id          path  string                       true  "ID del proyecto"
// @Param        employeeId  path  string                       true  "ID del empleado"
// @Param        body        body  dto.UpdateAllocationRequest  true  "Cambios"
// @Success      200         {object}  dto.AllocationResult
// @Failure      404         {object}  dto.ErrorResponse
// @Router       /api/projects/{id}/allocations/{employeeId} [patch]
func (h *AllocationHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateAllocationRequest
	if ok, err := h.v.bind(c, &in); !ok {
		return err
	}
	out, err := h.uc.UpdateAllocation(c.UserContext(), c.Params("id"), c.Params("employeeId"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Remove godoc
// @Summary      Quitar asignación
// @Description  Idempotente: quitar una asignación inexistente también responde 204.
// @Tags         allocations
// @Security     Bearer
// @Param        id          path  string  true  "ID del proyecto"
// @Param        employeeId  path  string  true  "ID del empleado"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/projects/{id}/allocations/{employeeId} [delete]
func (h *AllocationHandler) Remove(c *fiber.Ctx) error {
	if err := h.uc.RemoveAllocation(c.UserContext(), c.Params("id"), c.Params("employeeId")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RefreshName godoc
// @Summary      Refrescar nombre del empleado en la asignación
// @Tags         allocations
// @Security     Bearer
// @Produce      json
// @Param        id          path  string  true  "ID del proyecto"
// @Param        employeeId  path  string  true  "ID del empleado"
// @Success      200         {object}  dto.AllocationDTO
// @Failure      404         {object}  dto.ErrorResponse
// @Router       /api/projects/{id}/allocations/{employeeId}/refresh-name [post]
func (h *AllocationHandler) RefreshName(c *fiber.Ctx) error {
	out, err := h.uc.RefreshEmployeeName(c.UserContext(), c.Params("id"), c.Params("employeeId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// EmployeeAllocations godoc
// @Summary      Asignaciones de un empleado
// @Tags         employees
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del empleado"
// @Success      200  {array}  dto.AllocationDTO
// @Router       /api/employees/{id}/allocations [get]
func (h *AllocationHandler) EmployeeAllocations(c *fiber.Ctx) error {
	out, err := h.uc.EmployeeAllocations(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// EmployeeUtilization godoc
// @Summary      Utilización de un empleado
// @Tags         employees
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del empleado"
// @Success      200  {object}  dto.EmployeeUtilizationDTO
// @Router       /api/employees/{id}/utilization [get]
func (h *AllocationHandler) EmployeeUtilization(c *fiber.Ctx) error {
	out, err := h.uc.EmployeeUtilization(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
