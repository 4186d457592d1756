// Package resource contiene los cálculos puros del motor de asignación:
// utilización por empleado y por proyecto, gasto contra presupuesto y bandas de estado.
// No accede al almacenamiento; los casos de uso le entregan las entidades ya cargadas.
package resource

import (
	"iter"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Recursos-api/internal/domain"
	"github.com/jhoicas/Recursos-api/internal/domain/entity"
)

// FullCapacity capacidad total de un empleado (100 %).
var FullCapacity = decimal.NewFromInt(100)

// Bandas de utilización de un empleado.
const (
	StatusOverAllocated  = "over-allocated"
	StatusHighlyUtilized = "highly-utilized"
	StatusWellUtilized   = "well-utilized"
	StatusUnderUtilized  = "under-utilized"
)

var (
	highlyUtilizedFrom = decimal.NewFromInt(80)
	wellUtilizedFrom   = decimal.NewFromInt(50)
)

// ValidatePercentage comprueba el rango de una asignación individual (0..100)
// y que no tenga más de dos decimales.
// La suma entre proyectos no se limita aquí; ver OverAllocated.
func ValidatePercentage(p decimal.Decimal) error {
	if p.IsNegative() {
		return domain.Invalid("allocation_percentage no puede ser negativo: %s", p.String())
	}
	if p.GreaterThan(FullCapacity) {
		return domain.Invalid("allocation_percentage no puede superar 100: %s", p.String())
	}
	return ValidateScale("allocation_percentage", p)
}

// EmployeeAllocations recorre los proyectos en orden y produce cada par
// (proyecto, asignación) que pertenece a employeeID. La secuencia es perezosa.
func EmployeeAllocations(projects []*entity.Project, employeeID string) iter.Seq2[*entity.Project, entity.Allocation] {
	return func(yield func(*entity.Project, entity.Allocation) bool) {
		for _, p := range projects {
			if p == nil {
				continue
			}
			for _, a := range p.Allocations {
				if a.EmployeeID != employeeID {
					continue
				}
				if !yield(p, a) {
					return
				}
			}
		}
	}
}

// Utilization resumen de carga de un empleado sobre un conjunto de proyectos.
type Utilization struct {
	TotalAllocation   decimal.Decimal
	AvailableCapacity decimal.Decimal // puede ser negativa (sobreasignación)
	ProjectCount      int
}

// EmployeeUtilization pliega todas las asignaciones del empleado en projects.
func EmployeeUtilization(projects []*entity.Project, employeeID string) Utilization {
	total := decimal.Zero
	seen := make(map[string]struct{})
	for p, a := range EmployeeAllocations(projects, employeeID) {
		total = total.Add(a.AllocationPercentage)
		seen[p.ID] = struct{}{}
	}
	return Utilization{
		TotalAllocation:   total,
		AvailableCapacity: FullCapacity.Sub(total),
		ProjectCount:      len(seen),
	}
}

// UtilizationStatus clasifica el total asignado de un empleado.
func UtilizationStatus(total decimal.Decimal) string {
	switch {
	case total.GreaterThan(FullCapacity):
		return StatusOverAllocated
	case total.GreaterThan(highlyUtilizedFrom):
		return StatusHighlyUtilized
	case total.GreaterThan(wellUtilizedFrom):
		return StatusWellUtilized
	default:
		return StatusUnderUtilized
	}
}

// ProjectAllocation Σ de porcentajes dentro de un único proyecto.
// No es la utilización de un empleado.
func ProjectAllocation(p *entity.Project) decimal.Decimal {
	total := decimal.Zero
	if p == nil {
		return total
	}
	for _, a := range p.Allocations {
		total = total.Add(a.AllocationPercentage)
	}
	return total
}

// EmployeeLoad carga acumulada de un empleado dentro de un conjunto de proyectos.
type EmployeeLoad struct {
	EmployeeID      string
	EmployeeName    string
	TotalAllocation decimal.Decimal
	ProjectCount    int
}

// OverAllocated suma los porcentajes por empleado solo dentro de projects y
// devuelve los que superan 100, ordenados por total descendente y luego por ID.
// Es una vista acotada al conjunto recibido, distinta de EmployeeUtilization
// sobre toda la organización.
func OverAllocated(projects []*entity.Project) []EmployeeLoad {
	loads := Loads(projects)
	out := make([]EmployeeLoad, 0)
	for _, l := range loads {
		if l.TotalAllocation.GreaterThan(FullCapacity) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].TotalAllocation.Cmp(out[j].TotalAllocation); c != 0 {
			return c > 0
		}
		return out[i].EmployeeID < out[j].EmployeeID
	})
	return out
}

// Loads acumula la carga de cada empleado presente en projects, en orden de aparición.
func Loads(projects []*entity.Project) []EmployeeLoad {
	index := make(map[string]int)
	var loads []EmployeeLoad
	for _, p := range projects {
		if p == nil {
			continue
		}
		for _, a := range p.Allocations {
			i, ok := index[a.EmployeeID]
			if !ok {
				name := a.EmployeeName
				if name == "" {
					name = entity.UnknownEmployeeName
				}
				index[a.EmployeeID] = len(loads)
				loads = append(loads, EmployeeLoad{EmployeeID: a.EmployeeID, EmployeeName: name, TotalAllocation: decimal.Zero})
				i = len(loads) - 1
			}
			loads[i].TotalAllocation = loads[i].TotalAllocation.Add(a.AllocationPercentage)
			loads[i].ProjectCount++
		}
	}
	return loads
}
