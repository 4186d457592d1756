package mongodb

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jhoicas/Recursos-api/internal/domain/entity"
)

type userDoc struct {
	ID             string               `bson:"_id"`
	Role           string               `bson:"role"`
	FullName       string               `bson:"fullName"`
	Email          string               `bson:"email"`
	Department     string               `bson:"department"`
	Designation    string               `bson:"designation"`
	JoiningDate    time.Time            `bson:"joiningDate"`
	Compensation   primitive.Decimal128 `bson:"compensation"`
	Skills         []string             `bson:"skills"`
	Certifications []string             `bson:"certifications"`
	Status         string               `bson:"status"`
	CreatedAt      time.Time            `bson:"createdAt"`
	UpdatedAt      time.Time            `bson:"updatedAt"`
}

type projectDoc struct {
	ID                 string               `bson:"_id"`
	Name               string               `bson:"name"`
	Description        string               `bson:"description"`
	ManagerID          string               `bson:"managerId"`
	Budget             primitive.Decimal128 `bson:"budget"`
	StartDate          time.Time            `bson:"startDate"`
	EndDate            time.Time            `bson:"endDate"`
	Status             string               `bson:"status"`
	Progress           int                  `bson:"progress"`
	ProgressNotes      string               `bson:"progressNotes"`
	LastProgressUpdate time.Time            `bson:"lastProgressUpdate"`
	Allocations        []allocationDoc      `bson:"allocations"`
	Expenses           []expenseDoc         `bson:"expenses"`
	Version            int64                `bson:"version"`
	CreatedAt          time.Time            `bson:"createdAt"`
	UpdatedAt          time.Time            `bson:"updatedAt"`
}

type allocationDoc struct {
	EmployeeID           string               `bson:"employeeId"`
	EmployeeName         string               `bson:"employeeName"`
	AllocationPercentage primitive.Decimal128 `bson:"allocationPercentage"`
	Role                 string               `bson:"role"`
	StartDate            time.Time            `bson:"startDate"`
	EndDate              time.Time            `bson:"endDate"`
	AllocatedAt          time.Time            `bson:"allocatedAt"`
	UpdatedAt            time.Time            `bson:"updatedAt"`
}

type expenseDoc struct {
	ID          string               `bson:"id"`
	Description string               `bson:"description"`
	Amount      primitive.Decimal128 `bson:"amount"`
	Category    string               `bson:"category"`
	Date        time.Time            `bson:"date"`
	CreatedAt   time.Time            `bson:"createdAt"`
}

func toUserDoc(u *entity.User) userDoc {
	return userDoc{
		ID:             u.ID,
		Role:           u.Role,
		FullName:       u.FullName,
		Email:          u.Email,
		Department:     u.Department,
		Designation:    u.Designation,
		JoiningDate:    u.JoiningDate,
		Compensation:   toDecimal128(u.Compensation),
		Skills:         nonNil(u.Skills),
		Certifications: nonNil(u.Certifications),
		Status:         u.Status,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func (d userDoc) toEntity() *entity.User {
	return &entity.User{
		ID:             d.ID,
		Role:           d.Role,
		FullName:       d.FullName,
		Email:          d.Email,
		Department:     d.Department,
		Designation:    d.Designation,
		JoiningDate:    utc(d.JoiningDate),
		Compensation:   fromDecimal128(d.Compensation),
		Skills:         nonNil(d.Skills),
		Certifications: nonNil(d.Certifications),
		Status:         d.Status,
		CreatedAt:      utc(d.CreatedAt),
		UpdatedAt:      utc(d.UpdatedAt),
	}
}

func toProjectDoc(p *entity.Project) projectDoc {
	allocs := make([]allocationDoc, 0, len(p.Allocations))
	for _, a := range p.Allocations {
		allocs = append(allocs, toAllocationDoc(a))
	}
	expenses := make([]expenseDoc, 0, len(p.Expenses))
	for _, e := range p.Expenses {
		expenses = append(expenses, toExpenseDoc(e))
	}
	return projectDoc{
		ID:                 p.ID,
		Name:               p.Name,
		Description:        p.Description,
		ManagerID:          p.ManagerID,
		Budget:             toDecimal128(p.Budget),
		StartDate:          p.StartDate,
		EndDate:            p.EndDate,
		Status:             p.Status,
		Progress:           p.Progress,
		ProgressNotes:      p.ProgressNotes,
		LastProgressUpdate: p.LastProgressUpdate,
		Allocations:        allocs,
		Expenses:           expenses,
		Version:            p.Version,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

func (d projectDoc) toEntity() *entity.Project {
	allocs := make([]entity.Allocation, 0, len(d.Allocations))
	for _, a := range d.Allocations {
		allocs = append(allocs, a.toEntity())
	}
	expenses := make([]entity.Expense, 0, len(d.Expenses))
	for _, e := range d.Expenses {
		expenses = append(expenses, e.toEntity())
	}
	return &entity.Project{
		ID:                 d.ID,
		Name:               d.Name,
		Description:        d.Description,
		ManagerID:          d.ManagerID,
		Budget:             fromDecimal128(d.Budget),
		StartDate:          utc(d.StartDate),
		EndDate:            utc(d.EndDate),
		Status:             d.Status,
		Progress:           d.Progress,
		ProgressNotes:      d.ProgressNotes,
		LastProgressUpdate: utc(d.LastProgressUpdate),
		Allocations:        allocs,
		Expenses:           expenses,
		Version:            d.Version,
		CreatedAt:          utc(d.CreatedAt),
		UpdatedAt:          utc(d.UpdatedAt),
	}
}

func toAllocationDoc(a entity.Allocation) allocationDoc {
	return allocationDoc{
		EmployeeID:           a.EmployeeID,
		EmployeeName:         a.EmployeeName,
		AllocationPercentage: toDecimal128(a.AllocationPercentage),
		Role:                 a.Role,
		StartDate:            a.StartDate,
		EndDate:              a.EndDate,
		AllocatedAt:          a.AllocatedAt,
		UpdatedAt:            a.UpdatedAt,
	}
}

func (d allocationDoc) toEntity() entity.Allocation {
	return entity.Allocation{
		EmployeeID:           d.EmployeeID,
		EmployeeName:         d.EmployeeName,
		AllocationPercentage: fromDecimal128(d.AllocationPercentage),
		Role:                 d.Role,
		StartDate:            utc(d.StartDate),
		EndDate:              utc(d.EndDate),
		AllocatedAt:          utc(d.AllocatedAt),
		UpdatedAt:            utc(d.UpdatedAt),
	}
}

func toExpenseDoc(e entity.Expense) expenseDoc {
	return expenseDoc{
		ID:          e.ID,
		Description: e.Description,
		Amount:      toDecimal128(e.Amount),
		Category:    e.Category,
		Date:        e.Date,
		CreatedAt:   e.CreatedAt,
	}
}

func (d expenseDoc) toEntity() entity.Expense {
	return entity.Expense{
		ID:          d.ID,
		Description: d.Description,
		Amount:      fromDecimal128(d.Amount),
		Category:    d.Category,
		Date:        utc(d.Date),
		CreatedAt:   utc(d.CreatedAt),
	}
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
