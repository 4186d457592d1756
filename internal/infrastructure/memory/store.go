// Package memory implementa los puertos de persistencia en memoria.
// Se usa en desarrollo (STORE_DRIVER=memory) y como almacenamiento de los tests.
// Todas las operaciones se serializan con un único mutex, lo que hace atómicas
// las operaciones por clave sobre asignaciones y gastos.
package memory

import (
	"slices"
	"sync"

	"github.com/jhoicas/Recursos-api/internal/domain/entity"
)

// Store estado compartido por UserRepo y ProjectRepo.
type Store struct {
	mu           sync.RWMutex
	users        map[string]*entity.User
	userOrder    []string
	projects     map[string]*entity.Project
	projectOrder []string
}

// NewStore crea un almacenamiento vacío.
func NewStore() *Store {
	return &Store{
		users:    make(map[string]*entity.User),
		projects: make(map[string]*entity.Project),
	}
}

func removeID(ids []string, id string) []string {
	return slices.DeleteFunc(ids, func(v string) bool { return v == id })
}

// Las entidades se copian al entrar y al salir para que los llamadores no
// compartan punteros ni slices con el estado interno.

func cloneUser(u *entity.User) *entity.User {
	c := *u
	c.Skills = slices.Clone(u.Skills)
	c.Certifications = slices.Clone(u.Certifications)
	return &c
}

func cloneProject(p *entity.Project) *entity.Project {
	c := *p
	c.Allocations = slices.Clone(p.Allocations)
	c.Expenses = slices.Clone(p.Expenses)
	return &c
}
