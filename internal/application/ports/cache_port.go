package ports

import (
	"context"

	"github.com/jhoicas/Recursos-api/internal/application/dto"
)

// UtilizationCache guarda la utilización calculada por empleado.
//
// Cada empleado tiene un contador de generación que Invalidate incrementa. Quien
// calcula desde el almacenamiento lee la generación antes de leer y la pasa a Set,
// que descarta la escritura si hubo una invalidación entretanto. Los comandos solo
// invalidan; un fallo de caché nunca debe impedir responder desde el almacenamiento.
type UtilizationCache interface {
	Get(ctx context.Context, employeeID string) (*dto.EmployeeUtilizationDTO, bool, error)
	Generation(ctx context.Context, employeeID string) (int64, error)
	// Set guarda u solo si la generación sigue siendo gen. Devuelve si se guardó.
	Set(ctx context.Context, employeeID string, gen int64, u *dto.EmployeeUtilizationDTO) (bool, error)
	Invalidate(ctx context.Context, employeeIDs ...string) error
}
