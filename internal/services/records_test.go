package services_test

import (
	"context"
	"errors"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/agrocoop/farmdesk/internal/store"
	"github.com/agrocoop/farmdesk/internal/storetest"
	"github.com/agrocoop/farmdesk/types"
)

func TestFarmerServiceLifecycle(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	f := newFixture(c)

	farmer, err := f.farmers.Create(ctx, types.Farmer{FullName: "Anna", Login: "anna"}, "Secret1")
	c.Assert(err, qt.IsNil)
	c.Assert(farmer.Role, qt.Equals, types.RoleFarmer)

	_, err = f.farmers.Create(ctx, types.Farmer{FullName: "Anna 2", Login: "anna"}, "Secret1")
	c.Assert(err, qt.ErrorIs, store.ErrDuplicateLogin)

	_, err = f.farmers.Create(ctx, types.Farmer{FullName: "Bad", Login: "bad", Role: "owner"}, "")
	c.Assert(validationProblems(c, err), qt.DeepEquals, []string{
		"role must be admin or farmer",
		"password is required",
	})

	farmer.Phone = "+7 900"
	ok, err := f.farmers.Update(ctx, farmer, "")
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)

	got, err := f.farmers.Get(ctx, farmer.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(got.Phone, qt.Equals, "+7 900")
	c.Assert(got.PasswordHash, qt.Equals, store.HashPassword("Secret1"))

	ok, err = f.farmers.Update(ctx, farmer, "Newpass9")
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)
	got, err = f.farmers.Get(ctx, farmer.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(got.PasswordHash, qt.Equals, store.HashPassword("Newpass9"))

	missing := farmer
	missing.ID = 404
	ok, err = f.farmers.Update(ctx, missing, "")
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsFalse)

	ok, err = f.farmers.Delete(ctx, farmer.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)
	ok, err = f.farmers.Delete(ctx, farmer.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsFalse)

	var actions []types.RecordAction
	for _, e := range f.events.Events() {
		c.Assert(e.Entity, qt.Equals, "farmer")
		c.Assert(e.ID, qt.Equals, farmer.ID)
		actions = append(actions, e.Action)
	}
	c.Assert(actions, qt.DeepEquals, []types.RecordAction{
		types.ActionCreated, types.ActionUpdated, types.ActionUpdated, types.ActionDeleted,
	})
}

func TestProductServiceLifecycle(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	f := newFixture(c)
	farmer := storetest.Farmer(c, f.db, "ivan", types.RoleFarmer)

	_, err := f.products.Create(ctx, types.Product{
		FarmerID:  farmer.ID,
		Quantity:  storetest.Dec("-1"),
		UnitPrice: storetest.Dec("2"),
	})
	c.Assert(validationProblems(c, err), qt.DeepEquals, []string{
		"product name is required",
		"quantity must not be negative",
	})

	_, err = f.products.Create(ctx, types.Product{FarmerID: 999, Name: "Wheat"})
	c.Assert(err, qt.ErrorIs, store.ErrUnknownFarmer)
	c.Assert(err, qt.ErrorIs, store.ErrNotFound)

	product, err := f.products.Create(ctx, types.Product{
		FarmerID:       farmer.ID,
		Name:           " Wheat ",
		Quantity:       storetest.Dec("10"),
		UnitPrice:      storetest.Dec("5"),
		ProductionCost: storetest.Dec("2"),
	})
	c.Assert(err, qt.IsNil)
	c.Assert(product.Name, qt.Equals, "Wheat")
	c.Assert(product.ProductionDate.IsZero(), qt.IsFalse)

	product.Quantity = storetest.Dec("12")
	ok, err := f.products.Update(ctx, product)
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)

	moved := product
	moved.FarmerID = 999
	_, err = f.products.Update(ctx, moved)
	c.Assert(err, qt.ErrorIs, store.ErrUnknownFarmer)

	gone := product
	gone.ID = 999
	ok, err = f.products.Update(ctx, gone)
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsFalse)

	list, err := f.products.ListByFarmer(ctx, farmer.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(list, qt.HasLen, 1)
	c.Assert(list[0].Quantity.String(), qt.Equals, "12")

	ok, err = f.products.Delete(ctx, product.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)
	ok, err = f.products.Delete(ctx, product.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsFalse)

	events := f.events.Events()
	c.Assert(events, qt.HasLen, 3)
	for _, e := range events {
		c.Assert(e.Entity, qt.Equals, "product")
		c.Assert(e.FarmerID, qt.Equals, farmer.ID)
	}
	c.Assert(events[2].Action, qt.Equals, types.ActionDeleted)
}

func TestNeedServiceDefaultsAndStatus(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	f := newFixture(c)
	farmer := storetest.Farmer(c, f.db, "ivan", types.RoleFarmer)

	need, err := f.needs.Create(ctx, types.Need{
		FarmerID:         farmer.ID,
		Name:             "Seeds",
		UnitPrice:        storetest.Dec("3"),
		RequiredQuantity: storetest.Dec("4"),
	})
	c.Assert(err, qt.IsNil)
	c.Assert(need.Type, qt.Equals, types.NeedTypeGood)
	c.Assert(need.Status, qt.Equals, types.NeedStatusRequired)

	need.Status = "lost"
	need.Type = "gift"
	_, err = f.needs.Update(ctx, need)
	c.Assert(validationProblems(c, err), qt.DeepEquals, []string{
		"need type must be good or service",
		"status must be required, purchased or in-progress",
	})

	need.Type = types.NeedTypeService
	need.Status = types.NeedStatusPurchased
	ok, err := f.needs.Update(ctx, need)
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)

	need.Status = types.NeedStatusRequired
	ok, err = f.needs.Update(ctx, need)
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)

	got, err := f.needs.Get(ctx, need.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(got.Status, qt.Equals, types.NeedStatusRequired)
	c.Assert(got.Type, qt.Equals, types.NeedTypeService)

	ok, err = f.needs.Delete(ctx, need.ID+1)
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsFalse)
}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	f := newFixture(c)
	f.events.err = errors.New("broker down")
	farmer := storetest.Farmer(c, f.db, "ivan", types.RoleFarmer)

	need, err := f.needs.Create(ctx, types.Need{FarmerID: farmer.ID, Name: "Fuel"})
	c.Assert(err, qt.IsNil)
	c.Assert(need.ID > 0, qt.IsTrue)
	c.Assert(f.events.Events(), qt.HasLen, 1)

	all, err := f.needs.List(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(all, qt.HasLen, 1)
}
