package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jhoicas/Recursos-api/internal/domain"
	"github.com/jhoicas/Recursos-api/internal/domain/entity"
	"github.com/jhoicas/Recursos-api/internal/domain/repository"
)

var _ repository.ProjectRepository = (*ProjectRepo)(nil)

// ProjectRepo implementación del puerto ProjectRepository sobre MongoDB.
type ProjectRepo struct {
	db   *DB
	coll *mongo.Collection
}

// NewProjectRepository construye el adaptador de persistencia para proyectos.
func NewProjectRepository(db *DB) *ProjectRepo {
	return &ProjectRepo{db: db, coll: db.db.Collection(projectsCollection)}
}

// Create persiste el documento completo del proyecto.
func (r *ProjectRepo) Create(ctx context.Context, project *entity.Project) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, toProjectDoc(project)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: proyecto %s ya existe", domain.ErrConflict, project.ID)
		}
		return domain.StoreError("insert project", err)
	}
	return nil
}

// GetByID obtiene el proyecto. (nil, nil) si no existe.
func (r *ProjectRepo) GetByID(ctx context.Context, id string) (*entity.Project, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var doc projectDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, domain.StoreError("get project by id", err)
	}
	return doc.toEntity(), nil
}

// List devuelve todos los proyectos en orden de creación.
func (r *ProjectRepo) List(ctx context.Context) ([]*entity.Project, error) {
	return r.find(ctx, bson.M{})
}

// ListByManager filtra por responsable.
func (r *ProjectRepo) ListByManager(ctx context.Context, managerID string) ([]*entity.Project, error) {
	return r.find(ctx, bson.M{"managerId": managerID})
}

func (r *ProjectRepo) find(ctx context.Context, filter bson.M) ([]*entity.Project, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, domain.StoreError("list projects", err)
	}
	var docs []projectDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, domain.StoreError("decode projects", err)
	}
	list := make([]*entity.Project, 0, len(docs))
	for _, d := range docs {
		list = append(list, d.toEntity())
	}
	return list, nil
}

// Update reemplaza los metadatos si la versión coincide e incrementa project.Version.
func (r *ProjectRepo) Update(ctx context.Context, project *entity.Project) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	doc := toProjectDoc(project)
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": project.ID, "version": project.Version},
		bson.M{
			"$set": bson.M{
				"name":        doc.Name,
				"description": doc.Description,
				"managerId":   doc.ManagerID,
				"budget":      doc.Budget,
				"startDate":   doc.StartDate,
				"endDate":     doc.EndDate,
				"status":      doc.Status,
				"updatedAt":   doc.UpdatedAt,
			},
			"$inc": bson.M{"version": 1},
		},
	)
	if err != nil {
		return domain.StoreError("update project", err)
	}
	if res.MatchedCount == 1 {
		project.Version++
		return nil
	}
	exists, err := r.exists(ctx, project.ID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: proyecto %s", domain.ErrNotFound, project.ID)
	}
	return fmt.Errorf("%w: el proyecto %s cambió desde la versión %d", domain.ErrConflict, project.ID, project.Version)
}

// Delete elimina el proyecto con FindOneAndDelete, que devuelve el documento
// borrado; no falla si no existe.
func (r *ProjectRepo) Delete(ctx context.Context, id string) ([]string, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var doc struct {
		Allocations []allocationDoc `bson:"allocations"`
	}
	opts := options.FindOneAndDelete().SetProjection(bson.M{"allocations.employeeId": 1})
	err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": id}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.StoreError("delete project", err)
	}
	allocated := make([]string, 0, len(doc.Allocations))
	for _, a := range doc.Allocations {
		allocated = append(allocated, a.EmployeeID)
	}
	return allocated, nil
}

// UpdateProgress reemplaza avance y notas.
func (r *ProjectRepo) UpdateProgress(ctx context.Context, projectID string, progress int, notes string, at time.Time) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	res, err := r.coll.UpdateByID(ctx, projectID, bson.M{"$set": bson.M{
		"progress":           progress,
		"progressNotes":      notes,
		"lastProgressUpdate": at,
		"updatedAt":          at,
	}})
	if err != nil {
		return domain.StoreError("update progress", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: proyecto %s", domain.ErrNotFound, projectID)
	}
	return nil
}

// AppendAllocation hace $push solo si el empleado no figura ya en el arreglo;
// el filtro y la escritura son atómicos sobre el documento.
func (r *ProjectRepo) AppendAllocation(ctx context.Context, projectID string, allocation entity.Allocation) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": projectID, "allocations.employeeId": bson.M{"$ne": allocation.EmployeeID}},
		bson.M{
			"$push": bson.M{"allocations": toAllocationDoc(allocation)},
			"$set":  bson.M{"updatedAt": allocation.AllocatedAt},
		},
	)
	if err != nil {
		return domain.StoreError("push allocation", err)
	}
	if res.MatchedCount == 1 {
		return nil
	}
	exists, err := r.exists(ctx, projectID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: proyecto %s", domain.ErrNotFound, projectID)
	}
	return domain.ErrDuplicateAllocation
}

// UpdateAllocation aplica el patch con $set posicional sobre el elemento del empleado.
func (r *ProjectRepo) UpdateAllocation(ctx context.Context, projectID, employeeID string, patch entity.AllocationPatch, at time.Time) (*entity.Allocation, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	set := bson.M{
		"allocations.$.updatedAt": at,
		"updatedAt":               at,
	}
	if patch.AllocationPercentage != nil {
		set["allocations.$.allocationPercentage"] = toDecimal128(*patch.AllocationPercentage)
	}
	if patch.Role != nil {
		set["allocations.$.role"] = *patch.Role
	}
	if patch.StartDate != nil {
		set["allocations.$.startDate"] = *patch.StartDate
	}
	if patch.EndDate != nil {
		set["allocations.$.endDate"] = *patch.EndDate
	}
	if patch.EmployeeName != nil {
		set["allocations.$.employeeName"] = *patch.EmployeeName
	}

	var doc projectDoc
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": projectID, "allocations.employeeId": employeeID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(bson.M{"allocations": bson.M{"$elemMatch": bson.M{"employeeId": employeeID}}}),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: asignación de %s en el proyecto %s", domain.ErrNotFound, employeeID, projectID)
		}
		return nil, domain.StoreError("update allocation", err)
	}
	if len(doc.Allocations) == 0 {
		return nil, fmt.Errorf("%w: asignación de %s en el proyecto %s", domain.ErrNotFound, employeeID, projectID)
	}
	a := doc.Allocations[0].toEntity()
	return &a, nil
}

// RemoveAllocation hace $pull del elemento del empleado. ErrNotFound solo si falta el proyecto.
func (r *ProjectRepo) RemoveAllocation(ctx context.Context, projectID, employeeID string) (bool, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": projectID, "allocations.employeeId": employeeID},
		bson.M{
			"$pull": bson.M{"allocations": bson.M{"employeeId": employeeID}},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return false, domain.StoreError("pull allocation", err)
	}
	if res.MatchedCount == 1 {
		return true, nil
	}
	exists, err := r.exists(ctx, projectID)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, fmt.Errorf("%w: proyecto %s", domain.ErrNotFound, projectID)
	}
	return false, nil
}

// AppendExpense hace $push del gasto al final del arreglo.
func (r *ProjectRepo) AppendExpense(ctx context.Context, projectID string, expense entity.Expense) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	res, err := r.coll.UpdateByID(ctx, projectID, bson.M{
		"$push": bson.M{"expenses": toExpenseDoc(expense)},
		"$set":  bson.M{"updatedAt": expense.CreatedAt},
	})
	if err != nil {
		return domain.StoreError("push expense", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: proyecto %s", domain.ErrNotFound, projectID)
	}
	return nil
}

func (r *ProjectRepo) exists(ctx context.Context, id string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, domain.StoreError("project exists", err)
	}
	return n > 0, nil
}
