package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/taskup/internal/domain"
)

func TestResourceService_Lifecycle(t *testing.T) {
	f := newFixture(t)
	svc := NewResourceService(f.resources, f.uow)
	ctx := f.asOwner()

	r := &domain.Resource{ProjectID: f.project.ID, Name: "Laptop", Type: domain.ResourceEquipment, Total: 4, Available: 4}
	require.NoError(t, svc.Create(ctx, r))

	updated, err := svc.Update(ctx, r.ID, ResourcePatch{Available: ptr(1.0)})
	require.NoError(t, err)
	assert.Equal(t, 3.0, updated.InUse())

	_, err = svc.Update(ctx, r.ID, ResourcePatch{Available: ptr(5.0)})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Update(ctx, r.ID, ResourcePatch{Total: ptr(0.5)})
	assert.ErrorIs(t, err, domain.ErrValidation, "total below available")

	list, err := svc.ListByProject(context.Background(), f.project.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, r.ID))
	_, err = svc.GetByID(context.Background(), r.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWorkPackageService_Lifecycle(t *testing.T) {
	f := newFixture(t)
	svc := NewWorkPackageService(f.workPackages, f.uow)
	ctx := f.asOwner()

	w := &domain.WorkPackage{ProjectID: f.project.ID, Code: "1.1", Name: "Discovery", EstimatedCost: 300, EstimatedDays: 5}
	require.NoError(t, svc.Create(ctx, w))

	assert.ErrorIs(t, svc.Create(ctx, &domain.WorkPackage{ProjectID: f.project.ID, Name: "Bad", EstimatedDays: -1}), domain.ErrValidation)

	stranger := f.addUser(t, "Stranger")
	assert.ErrorIs(t, svc.Delete(as(stranger), w.ID), domain.ErrForbidden)

	require.NoError(t, svc.Delete(ctx, w.ID))
	list, err := svc.ListByProject(context.Background(), f.project.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestResourceService_CreateFullyInUse(t *testing.T) {
	f := newFixture(t)
	svc := NewResourceService(f.resources, f.uow)

	r := &domain.Resource{ProjectID: f.project.ID, Name: "Crane", Type: domain.ResourceEquipment, Total: 2}
	require.NoError(t, svc.Create(f.asOwner(), r))

	got, err := svc.GetByID(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.Available)
	assert.Equal(t, 2.0, got.InUse())
}
