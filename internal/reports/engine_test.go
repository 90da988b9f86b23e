package reports_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/jmoiron/sqlx"

	"github.com/agrocoop/farmdesk/internal/reports"
	"github.com/agrocoop/farmdesk/internal/store"
	"github.com/agrocoop/farmdesk/internal/storetest"
	"github.com/agrocoop/farmdesk/types"
)

func newEngine(c *qt.C) (*reports.Engine, *sqlx.DB) {
	db := storetest.Open(c)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return reports.NewEngine(store.NewReportRepository(db), logger), db
}

func TestAdministratorsExcluded(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	engine, db := newEngine(c)

	admin := storetest.Farmer(c, db, "root", types.RoleAdmin)
	farmer := storetest.Farmer(c, db, "ivan", types.RoleFarmer)
	day := storetest.Date(2024, 6, 1)
	storetest.Product(c, db, admin.ID, "Wheat", "100", "5", "1", day)
	storetest.Product(c, db, farmer.ID, "Wheat", "10", "5", "2", day)
	storetest.Need(c, db, admin.ID, "Seeds", "1", "1", types.NeedStatusRequired)
	storetest.Need(c, db, farmer.ID, "Seeds", "1", "1", types.NeedStatusRequired)

	production, err := engine.RegionalProduction(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(production, qt.HasLen, 1)
	c.Assert(production[0].FarmerID, qt.Equals, farmer.ID)

	byName, err := engine.ProductProduction(ctx, "wheat")
	c.Assert(err, qt.IsNil)
	c.Assert(byName, qt.HasLen, 1)
	c.Assert(byName[0].FarmerID, qt.Equals, farmer.ID)

	needs, err := engine.FarmersNeeds(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(needs, qt.HasLen, 1)
	c.Assert(needs[0].FarmerID, qt.Equals, farmer.ID)

	profit, err := engine.FarmersProfit(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(profit, qt.HasLen, 1)
	c.Assert(profit[0].FarmerID, qt.Equals, farmer.ID)

	credits, err := engine.RequiredCredits(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(credits, qt.HasLen, 1)
	c.Assert(credits[0].FarmerID, qt.Equals, farmer.ID)

	diff, err := engine.CreditProfitDifference(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(diff, qt.HasLen, 1)
	c.Assert(diff[0].FarmerID, qt.Equals, farmer.ID)

	_, err = engine.FarmerStatistics(ctx, admin.ID)
	c.Assert(err, qt.ErrorIs, store.ErrNotFound)
}

func TestRegionalProductionOrder(t *testing.T) {
	c := qt.New(t)
	engine, db := newEngine(c)

	farmer := storetest.Farmer(c, db, "ivan", types.RoleFarmer)
	old := storetest.Product(c, db, farmer.ID, "Oats", "3", "2.50", "1", storetest.Date(2023, 9, 1))
	newer := storetest.Product(c, db, farmer.ID, "Rye", "4", "1.25", "1", storetest.Date(2024, 9, 1))
	sameDay := storetest.Product(c, db, farmer.ID, "Corn", "1", "1", "1", storetest.Date(2024, 9, 1))

	rows, err := engine.RegionalProduction(context.Background())
	c.Assert(err, qt.IsNil)
	c.Assert(rows, qt.HasLen, 3)
	c.Assert(rows[0].ProductID, qt.Equals, sameDay.ID)
	c.Assert(rows[1].ProductID, qt.Equals, newer.ID)
	c.Assert(rows[2].ProductID, qt.Equals, old.ID)

	c.Assert(rows[1].TotalValue.String(), qt.Equals, "5")
	c.Assert(rows[2].TotalValue.String(), qt.Equals, "7.5")
	c.Assert(rows[2].FarmerName, qt.Equals, farmer.FullName)
	c.Assert(rows[2].Address, qt.Equals, farmer.Address)
}

func TestProductProductionMatching(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	engine, db := newEngine(c)

	farmer := storetest.Farmer(c, db, "ivan", types.RoleFarmer)
	day := storetest.Date(2024, 1, 10)
	wheat := storetest.Product(c, db, farmer.ID, "Wheat", "5", "1", "1", day)
	buckwheat := storetest.Product(c, db, farmer.ID, "Buckwheat", "9", "1", "1", day)
	storetest.Product(c, db, farmer.ID, "Oats", "50", "1", "1", day)
	corn := storetest.Product(c, db, farmer.ID, "100% Corn", "1", "1", "1", day)

	rows, err := engine.ProductProduction(ctx, "WHEAT")
	c.Assert(err, qt.IsNil)
	c.Assert(rows, qt.HasLen, 2)
	c.Assert(rows[0].ProductID, qt.Equals, buckwheat.ID)
	c.Assert(rows[1].ProductID, qt.Equals, wheat.ID)

	rows, err = engine.ProductProduction(ctx, "%")
	c.Assert(err, qt.IsNil)
	c.Assert(rows, qt.HasLen, 1)
	c.Assert(rows[0].ProductID, qt.Equals, corn.ID)

	rows, err = engine.ProductProduction(ctx, "_")
	c.Assert(err, qt.IsNil)
	c.Assert(rows, qt.HasLen, 0)
	c.Assert(rows, qt.Not(qt.IsNil))
}

func TestProfitAndCreditScenario(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	engine, db := newEngine(c)

	a := storetest.Farmer(c, db, "a", types.RoleFarmer)
	b := storetest.Farmer(c, db, "b", types.RoleFarmer)
	storetest.Product(c, db, a.ID, "Potatoes", "10", "5", "2", storetest.Date(2024, 8, 1))
	storetest.Need(c, db, b.ID, "Irrigation", "40", "2", types.NeedStatusRequired)

	profit, err := engine.FarmersProfit(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(profit, qt.HasLen, 1)
	c.Assert(profit[0].FarmerID, qt.Equals, a.ID)
	c.Assert(profit[0].Revenue.String(), qt.Equals, "50")
	c.Assert(profit[0].Cost.String(), qt.Equals, "20")
	c.Assert(profit[0].Profit.String(), qt.Equals, "30")

	credits, err := engine.RequiredCredits(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(credits, qt.HasLen, 1)
	c.Assert(credits[0].FarmerID, qt.Equals, b.ID)
	c.Assert(credits[0].TotalCredit.String(), qt.Equals, "80")
}

func TestFarmersProfitExact(t *testing.T) {
	c := qt.New(t)
	engine, db := newEngine(c)

	farmer := storetest.Farmer(c, db, "ivan", types.RoleFarmer)
	day := storetest.Date(2024, 4, 4)
	storetest.Product(c, db, farmer.ID, "Honey", "3", "10.10", "3.70", day)
	storetest.Product(c, db, farmer.ID, "Eggs", "120", "0.15", "0.07", day)
	storetest.Product(c, db, farmer.ID, "Hay", "2", "1", "4", day)

	rows, err := engine.FarmersProfit(context.Background())
	c.Assert(err, qt.IsNil)
	c.Assert(rows, qt.HasLen, 3)
	for _, row := range rows {
		want := row.Quantity.Mul(row.UnitPrice.Sub(row.ProductionCost))
		c.Assert(row.Profit.Equal(want), qt.IsTrue, qt.Commentf("%s: %s != %s", row.ProductName, row.Profit, want))
	}
	c.Assert(rows[0].ProductName, qt.Equals, "Honey")
	c.Assert(rows[0].Profit.String(), qt.Equals, "19.2")
	c.Assert(rows[1].ProductName, qt.Equals, "Eggs")
	c.Assert(rows[1].Profit.String(), qt.Equals, "9.6")
	c.Assert(rows[2].ProductName, qt.Equals, "Hay")
	c.Assert(rows[2].Profit.String(), qt.Equals, "-6")
}

func TestRequiredCreditsExcludesPurchased(t *testing.T) {
	c := qt.New(t)
	engine, db := newEngine(c)

	small := storetest.Farmer(c, db, "small", types.RoleFarmer)
	big := storetest.Farmer(c, db, "big", types.RoleFarmer)
	storetest.Need(c, db, small.ID, "Seeds", "3", "4", types.NeedStatusRequired)
	storetest.Need(c, db, small.ID, "Tractor", "1000", "1", types.NeedStatusPurchased)
	storetest.Need(c, db, small.ID, "Fuel", "2.5", "4", types.NeedStatusInProgress)
	storetest.Need(c, db, big.ID, "Barn", "500", "1", types.NeedStatusRequired)

	rows, err := engine.RequiredCredits(context.Background())
	c.Assert(err, qt.IsNil)
	c.Assert(rows, qt.HasLen, 2)

	c.Assert(rows[0].FarmerID, qt.Equals, big.ID)
	c.Assert(rows[0].TotalCredit.String(), qt.Equals, "500")
	c.Assert(rows[0].NeedsCount, qt.Equals, 1)

	c.Assert(rows[1].FarmerID, qt.Equals, small.ID)
	c.Assert(rows[1].TotalCredit.String(), qt.Equals, "22")
	c.Assert(rows[1].NeedsCount, qt.Equals, 2)
	c.Assert(rows[1].NeedNames, qt.Equals, "Seeds, Fuel")
}

func TestCreditProfitDifference(t *testing.T) {
	c := qt.New(t)
	engine, db := newEngine(c)
	day := storetest.Date(2024, 5, 5)

	a := storetest.Farmer(c, db, "a", types.RoleFarmer)
	storetest.Product(c, db, a.ID, "Potatoes", "10", "5", "2", day)
	storetest.Need(c, db, a.ID, "Seeds", "3", "4", types.NeedStatusRequired)
	storetest.Need(c, db, a.ID, "Fuel", "2.5", "4", types.NeedStatusInProgress)
	storetest.Need(c, db, a.ID, "Tractor", "900", "1", types.NeedStatusPurchased)

	creditOnly := storetest.Farmer(c, db, "creditonly", types.RoleFarmer)
	storetest.Need(c, db, creditOnly.ID, "Barn", "300", "1", types.NeedStatusRequired)

	profitOnly := storetest.Farmer(c, db, "profitonly", types.RoleFarmer)
	storetest.Product(c, db, profitOnly.ID, "Carrots", "5", "3", "1", day)

	even := storetest.Farmer(c, db, "even", types.RoleFarmer)
	storetest.Product(c, db, even.ID, "Beets", "1", "10", "5", day)
	storetest.Need(c, db, even.ID, "Sacks", "5", "1", types.NeedStatusRequired)

	indebted := storetest.Farmer(c, db, "indebted", types.RoleFarmer)
	storetest.Product(c, db, indebted.ID, "Cabbage", "1", "2", "1", day)
	storetest.Need(c, db, indebted.ID, "Greenhouse", "100", "1", types.NeedStatusRequired)

	rows, err := engine.CreditProfitDifference(context.Background())
	c.Assert(err, qt.IsNil)
	c.Assert(rows, qt.HasLen, 4)

	want := []struct {
		id         int
		profit     string
		credit     string
		difference string
		status     types.DifferenceStatus
	}{
		{profitOnly.ID, "10", "0", "10", types.DifferenceProfitExceeds},
		{a.ID, "30", "22", "8", types.DifferenceProfitExceeds},
		{even.ID, "5", "5", "0", types.DifferenceEqual},
		{indebted.ID, "1", "100", "-99", types.DifferenceCreditExceeds},
	}
	for i, w := range want {
		row := rows[i]
		c.Assert(row.FarmerID, qt.Equals, w.id)
		c.Assert(row.Profit.String(), qt.Equals, w.profit)
		c.Assert(row.Credit.String(), qt.Equals, w.credit)
		c.Assert(row.Difference.String(), qt.Equals, w.difference)
		c.Assert(row.Difference.Equal(row.Profit.Sub(row.Credit)), qt.IsTrue)
		c.Assert(row.Status, qt.Equals, w.status)
		c.Assert(row.FarmerID, qt.Not(qt.Equals), creditOnly.ID)
	}
}

func TestFarmerStatistics(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	engine, db := newEngine(c)

	farmer := storetest.Farmer(c, db, "ivan", types.RoleFarmer)
	day := storetest.Date(2024, 3, 3)
	storetest.Product(c, db, farmer.ID, "Wheat", "10", "5", "1", day)
	storetest.Product(c, db, farmer.ID, "Wheat", "20", "7", "1", day)
	storetest.Product(c, db, farmer.ID, "Corn", "1", "3", "1", day)
	storetest.Need(c, db, farmer.ID, "Seeds", "3", "4", types.NeedStatusRequired)
	storetest.Need(c, db, farmer.ID, "Tractor", "100", "1", types.NeedStatusPurchased)
	storetest.Need(c, db, farmer.ID, "Fuel", "2", "5", types.NeedStatusInProgress)

	stats, err := engine.FarmerStatistics(ctx, farmer.ID)
	c.Assert(err, qt.IsNil)

	c.Assert(stats.Summary.FarmerID, qt.Equals, farmer.ID)
	c.Assert(stats.Summary.FullName, qt.Equals, farmer.FullName)
	c.Assert(stats.Summary.ProductCount, qt.Equals, 3)
	c.Assert(stats.Summary.TotalProductionValue.String(), qt.Equals, "193")
	c.Assert(stats.Summary.NeedsCount, qt.Equals, 3)
	c.Assert(stats.Summary.PendingCredit.String(), qt.Equals, "22")

	c.Assert(stats.Products, qt.HasLen, 2)
	c.Assert(stats.Products[0].ProductName, qt.Equals, "Corn")
	c.Assert(stats.Products[1].ProductName, qt.Equals, "Wheat")
	c.Assert(stats.Products[1].Batches, qt.Equals, 2)
	c.Assert(stats.Products[1].TotalQuantity.String(), qt.Equals, "30")
	c.Assert(stats.Products[1].AveragePrice.String(), qt.Equals, "6")
	c.Assert(stats.Products[1].TotalValue.String(), qt.Equals, "190")

	c.Assert(stats.Needs, qt.HasLen, 3)
	c.Assert(stats.Needs[0].Status, qt.Equals, types.NeedStatusInProgress)
	c.Assert(stats.Needs[1].Status, qt.Equals, types.NeedStatusPurchased)
	c.Assert(stats.Needs[1].TotalCost.String(), qt.Equals, "100")
	c.Assert(stats.Needs[2].Status, qt.Equals, types.NeedStatusRequired)

	rows := stats.Rows()
	c.Assert(rows, qt.HasLen, 6)
	c.Assert(rows[0].Kind(), qt.Equals, types.StatisticsSummary)
	c.Assert(rows[1].Kind(), qt.Equals, types.StatisticsProduct)
	c.Assert(rows[5].Kind(), qt.Equals, types.StatisticsNeed)

	_, err = engine.FarmerStatistics(ctx, farmer.ID+10)
	c.Assert(err, qt.ErrorIs, store.ErrNotFound)
}

func TestFarmerStatisticsWithoutRecords(t *testing.T) {
	c := qt.New(t)
	engine, db := newEngine(c)

	farmer := storetest.Farmer(c, db, "new", types.RoleFarmer)
	stats, err := engine.FarmerStatistics(context.Background(), farmer.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(stats.Summary.ProductCount, qt.Equals, 0)
	c.Assert(stats.Summary.TotalProductionValue.IsZero(), qt.IsTrue)
	c.Assert(stats.Summary.PendingCredit.IsZero(), qt.IsTrue)
	c.Assert(stats.Products, qt.HasLen, 0)
	c.Assert(stats.Needs, qt.HasLen, 0)
	c.Assert(stats.Rows(), qt.HasLen, 1)
}

func TestEmptyIsNotFailure(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	engine, _ := newEngine(c)

	production, err := engine.RegionalProduction(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(production, qt.Not(qt.IsNil))
	c.Assert(production, qt.HasLen, 0)

	diff, err := engine.CreditProfitDifference(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(diff, qt.Not(qt.IsNil))
	c.Assert(diff, qt.HasLen, 0)
}

func TestStoreFailureIsReportedAndLogged(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()

	db := storetest.Open(c)
	var logs bytes.Buffer
	engine := reports.NewEngine(store.NewReportRepository(db), slog.New(slog.NewTextHandler(&logs, nil)))
	c.Assert(db.Close(), qt.IsNil)

	rows, err := engine.RequiredCredits(ctx)
	c.Assert(err, qt.ErrorMatches, "required-credits report: .*")
	c.Assert(rows, qt.IsNil)

	_, err = engine.CreditProfitDifference(ctx)
	c.Assert(err, qt.Not(qt.IsNil))

	c.Assert(logs.String(), qt.Contains, "report failed")
	c.Assert(logs.String(), qt.Contains, "report=required-credits")
}

func TestReportsAreIdempotent(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	engine, db := newEngine(c)

	a := storetest.Farmer(c, db, "a", types.RoleFarmer)
	b := storetest.Farmer(c, db, "b", types.RoleFarmer)
	day := storetest.Date(2024, 2, 2)
	storetest.Product(c, db, a.ID, "Milk", "10", "1", "0.5", day)
	storetest.Product(c, db, b.ID, "Milk", "10", "1", "0.5", day)
	storetest.Product(c, db, b.ID, "Cheese", "2", "8", "3", day)
	storetest.Need(c, db, a.ID, "Feed", "4", "4", types.NeedStatusRequired)
	storetest.Need(c, db, b.ID, "Feed", "4", "4", types.NeedStatusRequired)

	params := reports.Params{Product: "milk", FarmerID: b.ID}
	for _, name := range reports.Names() {
		first, err := engine.Table(ctx, name, params)
		c.Assert(err, qt.IsNil)
		second, err := engine.Table(ctx, name, params)
		c.Assert(err, qt.IsNil)
		c.Assert(second, qt.DeepEquals, first, qt.Commentf("report %s", name))
	}
}
