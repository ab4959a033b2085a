package service

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/farmfed/delivery-system/internal/core/domain"
	"github.com/farmfed/delivery-system/internal/core/ports"
)

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// Shared in-memory stubs for the service tests
// ---------------------------------------------------------------------------

type stubGeocoder struct {
	mu         sync.Mutex
	byLine1    map[string]domain.Coordinate
	failLine1  map[string]bool
	callCount  int
	lastLookup string
}

func newStubGeocoder() *stubGeocoder {
	return &stubGeocoder{
		byLine1:   make(map[string]domain.Coordinate),
		failLine1: make(map[string]bool),
	}
}

func (g *stubGeocoder) Geocode(_ context.Context, addr domain.Address) (domain.Coordinate, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.callCount++
	g.lastLookup = addr.Line1
	if g.failLine1[addr.Line1] {
		return domain.Coordinate{}, domain.ErrGeocodeFailed
	}
	if coord, ok := g.byLine1[addr.Line1]; ok {
		return coord, nil
	}
	return domain.Coordinate{}, domain.ErrGeocodeFailed
}

func (g *stubGeocoder) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.callCount
}

type stubSettingsStore struct {
	rate     int64
	rateErr  error
	geofence *domain.GeoJSONPolygon
	rateSet  []int64
	polySet  []*domain.GeoJSONPolygon
}

func (s *stubSettingsStore) DeliveryRate(_ context.Context) (int64, error) {
	return s.rate, s.rateErr
}

func (s *stubSettingsStore) SetDeliveryRate(_ context.Context, cents int64) error {
	s.rate = cents
	s.rateSet = append(s.rateSet, cents)
	return nil
}

func (s *stubSettingsStore) Geofence(_ context.Context) (*domain.GeoJSONPolygon, error) {
	return s.geofence, nil
}

func (s *stubSettingsStore) SetGeofence(_ context.Context, polygon *domain.GeoJSONPolygon) error {
	s.geofence = polygon
	s.polySet = append(s.polySet, polygon)
	return nil
}

type stubMarketplace struct {
	mu sync.Mutex

	listings       map[string]*ports.ListingWithSeller
	integrationErr error // returned from ShowListingWithSeller when set
	publicErr      error

	currentUser    *ports.CurrentUser
	currentUserErr error

	initiateErr   map[string]error // listingID -> error
	initiated     []ports.InitiateOrderInput
	nextOrderSeq  int
	transitionErr map[string]error // transactionID -> error
	transitions   []string         // "<txID>:<transition>"

	transaction    *ports.Transaction
	transactionErr error
}

func newStubMarketplace() *stubMarketplace {
	return &stubMarketplace{
		listings:      make(map[string]*ports.ListingWithSeller),
		initiateErr:   make(map[string]error),
		transitionErr: make(map[string]error),
		currentUser:   &ports.CurrentUser{ID: "user_1", ProcessorCustomerID: "cus_1"},
	}
}

func (m *stubMarketplace) ShowListingWithSeller(_ context.Context, listingID string) (*ports.ListingWithSeller, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.integrationErr != nil {
		return nil, m.integrationErr
	}
	lw, ok := m.listings[listingID]
	if !ok {
		return nil, domain.ErrListingNotFound
	}
	return lw, nil
}

func (m *stubMarketplace) ShowListing(_ context.Context, listingID string) (*ports.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.publicErr != nil {
		return nil, m.publicErr
	}
	lw, ok := m.listings[listingID]
	if !ok {
		return nil, domain.ErrListingNotFound
	}
	listing := lw.Listing
	return &listing, nil
}

func (m *stubMarketplace) InitiateOrder(_ context.Context, in ports.InitiateOrderInput) (*ports.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.initiateErr[in.ListingID]; err != nil {
		return nil, err
	}
	m.initiated = append(m.initiated, in)
	m.nextOrderSeq++
	id := "tx_" + in.ListingID
	return &ports.Order{ID: id, PaymentIntentID: "pi_" + in.ListingID}, nil
}

func (m *stubMarketplace) TransitionTransaction(_ context.Context, transactionID, transition string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.transitionErr[transactionID]; err != nil {
		return err
	}
	m.transitions = append(m.transitions, transactionID+":"+transition)
	return nil
}

func (m *stubMarketplace) ShowTransaction(_ context.Context, _, transactionID string) (*ports.Transaction, error) {
	if m.transactionErr != nil {
		return nil, m.transactionErr
	}
	if m.transaction == nil || m.transaction.ID != transactionID {
		return nil, domain.ErrTransactionNotFound
	}
	return m.transaction, nil
}

func (m *stubMarketplace) ShowCurrentUser(_ context.Context, _ string) (*ports.CurrentUser, error) {
	if m.currentUserErr != nil {
		return nil, m.currentUserErr
	}
	return m.currentUser, nil
}

func (m *stubMarketplace) transitionsFor(transactionID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, t := range m.transitions {
		if strings.HasPrefix(t, transactionID+":") {
			out = append(out, t)
		}
	}
	return out
}

type stubPayments struct {
	createIntentErr  error
	confirmSetupErr  error
	attachErr        error
	confirmErr       map[string]error // paymentIntentID -> error
	confirmedIntents []string
	attachedMethods  []string
	methodID         string
}

func newStubPayments() *stubPayments {
	return &stubPayments{confirmErr: make(map[string]error), methodID: "pm_test_1"}
}

func (p *stubPayments) CreateSetupIntent(_ context.Context, _ string) (*ports.SetupIntent, error) {
	if p.createIntentErr != nil {
		return nil, p.createIntentErr
	}
	return &ports.SetupIntent{ID: "seti_1", ClientSecret: "seti_1_secret"}, nil
}

func (p *stubPayments) ConfirmSetupIntent(_ context.Context, _, _ string) (string, error) {
	if p.confirmSetupErr != nil {
		return "", p.confirmSetupErr
	}
	return p.methodID, nil
}

func (p *stubPayments) ConfirmPaymentIntent(_ context.Context, paymentIntentID, _ string) error {
	if err := p.confirmErr[paymentIntentID]; err != nil {
		return err
	}
	p.confirmedIntents = append(p.confirmedIntents, paymentIntentID)
	return nil
}

func (p *stubPayments) AttachPaymentMethod(_ context.Context, customerID, paymentMethodID string) error {
	if p.attachErr != nil {
		return p.attachErr
	}
	p.attachedMethods = append(p.attachedMethods, customerID+":"+paymentMethodID)
	return nil
}

type stubDelivery struct {
	configured bool
	createErr  error
	created    []ports.DeliveryTaskInput
}

func (d *stubDelivery) Configured() bool { return d.configured }

func (d *stubDelivery) CreateTask(_ context.Context, in ports.DeliveryTaskInput) (*ports.DeliveryTask, error) {
	if d.createErr != nil {
		return nil, d.createErr
	}
	d.created = append(d.created, in)
	return &ports.DeliveryTask{ID: "task_1", TrackingURL: "https://track.example/" + in.TransactionID}, nil
}

type stubCartStore struct {
	items   map[string][]domain.CartLineItem
	itemErr error
	removed []string
	cleared bool
}

func newStubCartStore() *stubCartStore {
	return &stubCartStore{items: make(map[string][]domain.CartLineItem)}
}

func (c *stubCartStore) Items(_ context.Context, buyerID string) ([]domain.CartLineItem, error) {
	if c.itemErr != nil {
		return nil, c.itemErr
	}
	return c.items[buyerID], nil
}

func (c *stubCartStore) Save(_ context.Context, buyerID string, items []domain.CartLineItem) error {
	c.items[buyerID] = items
	return nil
}

func (c *stubCartStore) RemoveItems(_ context.Context, buyerID string, listingIDs []string) error {
	c.removed = append(c.removed, listingIDs...)
	drop := make(map[string]bool, len(listingIDs))
	for _, id := range listingIDs {
		drop[id] = true
	}
	kept := c.items[buyerID][:0:0]
	for _, item := range c.items[buyerID] {
		if !drop[item.ListingID] {
			kept = append(kept, item)
		}
	}
	c.items[buyerID] = kept
	return nil
}

func (c *stubCartStore) Clear(_ context.Context, buyerID string) error {
	c.cleared = true
	delete(c.items, buyerID)
	return nil
}

type stubRunRepo struct {
	archived []*domain.CheckoutRun
	failures []*domain.ReconciliationFailure
}

func (r *stubRunRepo) Archive(_ context.Context, run *domain.CheckoutRun) error {
	r.archived = append(r.archived, run)
	return nil
}

func (r *stubRunRepo) RecordReconciliationFailure(_ context.Context, failure *domain.ReconciliationFailure) error {
	r.failures = append(r.failures, failure)
	return nil
}

func (r *stubRunRepo) ListRunsForBuyer(_ context.Context, buyerID string, _ int64) ([]*domain.CheckoutRun, error) {
	var out []*domain.CheckoutRun
	for _, run := range r.archived {
		if run.BuyerID == buyerID {
			out = append(out, run)
		}
	}
	return out, nil
}

// stubEstimation returns a fixed quote without touching any collaborator.
type stubEstimation struct {
	quote *domain.RouteQuote
	err   error
	calls int
}

func (e *stubEstimation) EstimateCartDelivery(_ context.Context, _ ports.EstimateCartInput) (*domain.RouteQuote, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	return e.quote, nil
}
