package services_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	qt "github.com/frankban/quicktest"
	"github.com/jmoiron/sqlx"

	"github.com/agrocoop/farmdesk/internal/services"
	"github.com/agrocoop/farmdesk/internal/store"
	"github.com/agrocoop/farmdesk/internal/storetest"
	"github.com/agrocoop/farmdesk/types"
)

type capturePublisher struct {
	mu     sync.Mutex
	events []types.RecordEvent
	err    error
}

func (p *capturePublisher) PublishRecordEvent(_ context.Context, event types.RecordEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *capturePublisher) Events() []types.RecordEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]types.RecordEvent(nil), p.events...)
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type fixture struct {
	db       *sqlx.DB
	events   *capturePublisher
	farmers  *services.FarmerService
	products *services.ProductService
	needs    *services.NeedService
	auth     *services.AuthService
}

func newFixture(c *qt.C) fixture {
	db := storetest.Open(c)
	events := &capturePublisher{}
	farmerRepo := store.NewFarmerRepository(db)
	return fixture{
		db:       db,
		events:   events,
		farmers:  services.NewFarmerService(farmerRepo, events, discard),
		products: services.NewProductService(store.NewProductRepository(db), events, discard),
		needs:    services.NewNeedService(store.NewNeedRepository(db), events, discard),
		auth:     services.NewAuthService(farmerRepo, events, discard),
	}
}

func validationProblems(c *qt.C, err error) []string {
	c.Helper()
	var verr *services.ValidationError
	c.Assert(errors.As(err, &verr), qt.IsTrue, qt.Commentf("error %v", err))
	return verr.Problems
}
