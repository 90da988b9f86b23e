package store_test

import (
	"context"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/agrocoop/farmdesk/internal/store"
	"github.com/agrocoop/farmdesk/internal/storetest"
	"github.com/agrocoop/farmdesk/types"
)

func TestHashPassword(t *testing.T) {
	c := qt.New(t)

	c.Assert(store.HashPassword("abc"), qt.Equals,
		"ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad")
	c.Assert(store.HashPassword(""), qt.Equals,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855")
}

func TestFarmerRepositoryCreateAndGet(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	db := storetest.Open(c)
	repo := store.NewFarmerRepository(db)

	created, err := repo.Create(ctx, types.Farmer{
		FullName:     "Ivan Petrov",
		Login:        "ivan",
		PasswordHash: store.HashPassword("Secret1"),
	})
	c.Assert(err, qt.IsNil)
	c.Assert(created.ID > 0, qt.IsTrue)
	c.Assert(created.Role, qt.Equals, types.RoleFarmer)
	c.Assert(created.RegisteredAt.IsZero(), qt.IsFalse)

	byID, err := repo.GetByID(ctx, created.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(byID.Login, qt.Equals, "ivan")
	c.Assert(byID.PasswordHash, qt.Equals, store.HashPassword("Secret1"))

	byLogin, err := repo.GetByLogin(ctx, "ivan")
	c.Assert(err, qt.IsNil)
	c.Assert(byLogin.ID, qt.Equals, created.ID)

	_, err = repo.GetByID(ctx, created.ID+100)
	c.Assert(err, qt.ErrorIs, store.ErrNotFound)
	_, err = repo.GetByLogin(ctx, "nobody")
	c.Assert(err, qt.ErrorIs, store.ErrNotFound)
}

func TestFarmerRepositoryDuplicateLogin(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	db := storetest.Open(c)
	repo := store.NewFarmerRepository(db)

	storetest.Farmer(c, db, "anna", types.RoleFarmer)
	other := storetest.Farmer(c, db, "olga", types.RoleFarmer)

	_, err := repo.Create(ctx, types.Farmer{FullName: "Anna Two", Login: "anna", PasswordHash: "x"})
	c.Assert(err, qt.ErrorIs, store.ErrDuplicateLogin)

	other.Login = "anna"
	err = repo.Update(ctx, other)
	c.Assert(err, qt.ErrorIs, store.ErrDuplicateLogin)

	farmers, err := repo.List(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(farmers, qt.HasLen, 2)
}

func TestFarmerRepositoryUpdate(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	db := storetest.Open(c)
	repo := store.NewFarmerRepository(db)

	farmer := storetest.Farmer(c, db, "pavel", types.RoleFarmer)

	farmer.FullName = "Pavel Sidorov"
	farmer.Role = types.RoleAdmin
	farmer.PasswordHash = ""
	c.Assert(repo.Update(ctx, farmer), qt.IsNil)

	got, err := repo.GetByID(ctx, farmer.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(got.FullName, qt.Equals, "Pavel Sidorov")
	c.Assert(got.Role, qt.Equals, types.RoleAdmin)
	c.Assert(got.PasswordHash, qt.Equals, store.HashPassword(storetest.Password))

	farmer.PasswordHash = store.HashPassword("Other2")
	c.Assert(repo.Update(ctx, farmer), qt.IsNil)
	got, err = repo.GetByID(ctx, farmer.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(got.PasswordHash, qt.Equals, store.HashPassword("Other2"))

	farmer.ID = 999
	c.Assert(repo.Update(ctx, farmer), qt.ErrorIs, store.ErrNotFound)
}

func TestFarmerRepositoryDeleteCascades(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	db := storetest.Open(c)
	farmers := store.NewFarmerRepository(db)
	products := store.NewProductRepository(db)
	needs := store.NewNeedRepository(db)

	farmer := storetest.Farmer(c, db, "dmitry", types.RoleFarmer)
	keep := storetest.Farmer(c, db, "maria", types.RoleFarmer)
	day := storetest.Date(2024, 5, 1)
	for _, name := range []string{"Wheat", "Barley", "Oats"} {
		storetest.Product(c, db, farmer.ID, name, "10", "5", "2", day)
	}
	storetest.Need(c, db, farmer.ID, "Seeds", "3", "4", types.NeedStatusRequired)
	storetest.Need(c, db, farmer.ID, "Tractor repair", "100", "1", types.NeedStatusPurchased)
	storetest.Product(c, db, keep.ID, "Milk", "20", "1", "0.5", day)

	c.Assert(farmers.Delete(ctx, farmer.ID), qt.IsNil)

	_, err := farmers.GetByID(ctx, farmer.ID)
	c.Assert(err, qt.ErrorIs, store.ErrNotFound)

	left, err := products.ListByFarmer(ctx, farmer.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(left, qt.HasLen, 0)
	leftNeeds, err := needs.ListByFarmer(ctx, farmer.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(leftNeeds, qt.HasLen, 0)

	all, err := products.List(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(all, qt.HasLen, 1)
	c.Assert(all[0].FarmerID, qt.Equals, keep.ID)

	c.Assert(farmers.Delete(ctx, farmer.ID), qt.ErrorIs, store.ErrNotFound)
}
