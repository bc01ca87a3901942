package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ordererrors "comanda/internal/orders/errors"
	"comanda/internal/orders/validator"
	"comanda/pkg/client"
	"comanda/pkg/config"
	mongotx "comanda/pkg/db/mongo"
	apperrors "comanda/pkg/errors"
	"comanda/pkg/kafka"
	"comanda/pkg/logger"
	"comanda/pkg/model"
	"comanda/pkg/sealer"
)

type mockOrderRepository struct {
	mu     sync.Mutex
	orders map[string]*model.Order
	nextID int
}

func newMockRepo() *mockOrderRepository {
	return &mockOrderRepository{orders: map[string]*model.Order{}}
}

func (m *mockOrderRepository) Create(ctx context.Context, o *model.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	o.ID = fmt.Sprintf("%024x", m.nextID)
	o.CreatedAt = time.Now().UTC()
	o.UpdatedAt = o.CreatedAt
	stored := *o
	m.orders[o.ID] = &stored
	return nil
}

func (m *mockOrderRepository) FindByID(ctx context.Context, id string) (*model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(id) != 24 {
		return nil, fmt.Errorf("%w: %s", ordererrors.ErrInvalidID, id)
	}
	o, ok := m.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ordererrors.ErrNotFound, id)
	}
	out := *o
	return &out, nil
}

func (m *mockOrderRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.Order{}
	for _, o := range m.orders {
		cp := *o
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockOrderRepository) Update(ctx context.Context, id string, expectedStatus model.OrderStatus, o *model.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.orders[id]
	if !ok || stored.Status != expectedStatus {
		return fmt.Errorf("%w: %s", ordererrors.ErrStatusChanged, id)
	}
	o.UpdatedAt = time.Now().UTC()
	cp := *o
	m.orders[id] = &cp
	return nil
}

func (m *mockOrderRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[id]; !ok {
		return fmt.Errorf("%w: %s", ordererrors.ErrNotFound, id)
	}
	delete(m.orders, id)
	return nil
}

func (m *mockOrderRepository) SearchByStore(ctx context.Context, storeID string, status model.OrderStatus, limit int, offset int64) ([]*model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.Order{}
	for _, o := range m.orders {
		if o.StoreID == storeID && (status == "" || o.Status == status) {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockOrderRepository) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.orders)), nil
}

func (m *mockOrderRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

type stubLookup struct {
	customers map[string]*model.Customer
	err       error
	calls     int
}

func (s *stubLookup) FindByCPF(ctx context.Context, cpf string) (*model.Customer, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if c, ok := s.customers[cpf]; ok {
		return c, nil
	}
	return nil, client.ErrCustomerNotFound
}

type recordingPublisher struct {
	mu       sync.Mutex
	messages []kafka.Message
}

func (p *recordingPublisher) Publish(ctx context.Context, msg kafka.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type fixture struct {
	repo      *mockOrderRepository
	lookup    *stubLookup
	publisher *recordingPublisher
	metrics   *Metrics
	sealer    *sealer.Sealer
	service   OrderService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.NewNop()
	cfg := &config.Config{
		ServiceName:    "orders",
		DefaultCountry: "BR",
		Log:            log,
		ReadTimeout:    5 * time.Second,
	}
	s, err := sealer.New(config.DefaultTrackingKey)
	require.NoError(t, err)

	f := &fixture{
		repo: newMockRepo(),
		lookup: &stubLookup{customers: map[string]*model.Customer{
			"11144477735": {ID: "665f1c2a9b1e8a0012345678", CPF: "11144477735"},
		}},
		publisher: &recordingPublisher{},
		metrics:   NewMetrics(prometheus.NewRegistry()),
		sealer:    s,
	}
	f.service = NewOrderService(f.repo, validator.NewOrderValidator(log), f.lookup, f.publisher, f.sealer, f.metrics, cfg)
	return f
}

func newOrder() *model.Order {
	return &model.Order{
		StoreID: " Loja-Centro ",
		Items: []model.OrderItem{
			{Name: "X-Salada", Quantity: 2, UnitPriceCents: 1990},
			{Name: "Guaraná", Quantity: 1, UnitPriceCents: 600},
		},
		Notes: "sem cebola",
	}
}

func appCode(t *testing.T, err error) string {
	t.Helper()
	appErr := apperrors.AsAppError(err)
	require.NotNil(t, appErr, "expected an AppError, got %v", err)
	return appErr.Code
}

func TestCreate_ComputesServerOwnedFields(t *testing.T) {
	f := newFixture(t)
	o := newOrder()
	o.Status = model.OrderStatusDelivered
	o.TotalCents = 1

	require.NoError(t, f.service.Create(context.Background(), o))

	assert.NotEmpty(t, o.ID)
	assert.Equal(t, "loja-centro", o.StoreID)
	assert.Equal(t, model.OrderStatusPending, o.Status)
	assert.Equal(t, int64(4580), o.TotalCents)
	assert.Equal(t, "BRL", o.Currency)
	assert.NotEmpty(t, o.TrackingToken)
	assert.Empty(t, o.CustomerID)
	assert.Zero(t, f.lookup.calls, "no CPF, no lookup")

	require.Len(t, f.publisher.messages, 1)
	var evt model.OrderCreatedEvent
	require.NoError(t, f.publisher.messages[0].DecodeValue(&evt))
	assert.Equal(t, o.ID, evt.OrderID)
	assert.Equal(t, int64(4580), evt.TotalCents)
	storeID, ok := f.publisher.messages[0].GetHeader(kafka.HeaderStoreID)
	assert.True(t, ok)
	assert.Equal(t, "loja-centro", storeID)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.ordersCreated.WithLabelValues("BRL")))
}

func TestCreate_ResolvesCustomerByCPF(t *testing.T) {
	f := newFixture(t)

	o := newOrder()
	o.CustomerCPF = "111.444.777-35"
	require.NoError(t, f.service.Create(context.Background(), o))
	assert.Equal(t, "11144477735", o.CustomerCPF)
	assert.Equal(t, "111.444.777-35", o.CustomerCPFFormatted)
	assert.Equal(t, "665f1c2a9b1e8a0012345678", o.CustomerID)

	unknown := newOrder()
	unknown.CustomerCPF = "52998224725"
	require.NoError(t, f.service.Create(context.Background(), unknown))
	assert.Empty(t, unknown.CustomerID)
	assert.Equal(t, 2, f.lookup.calls)

	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.customerLookups.WithLabelValues(lookupFound)))
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.customerLookups.WithLabelValues(lookupNotFound)))
}

func TestCreate_CustomersOutageDoesNotBlockOrder(t *testing.T) {
	f := newFixture(t)
	f.lookup.err = errors.New("connection refused")

	o := newOrder()
	o.CustomerCPF = "11144477735"
	require.NoError(t, f.service.Create(context.Background(), o))
	assert.NotEmpty(t, o.ID)
	assert.Empty(t, o.CustomerID)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.customerLookups.WithLabelValues(lookupError)))
}

func TestCreate_Rejections(t *testing.T) {
	f := newFixture(t)

	o := newOrder()
	o.CustomerCPF = "123.456.789-00"
	err := f.service.Create(context.Background(), o)
	require.Equal(t, apperrors.CodeInvalidCPF, appCode(t, err))
	assert.Equal(t, "123.456.789-00", apperrors.AsAppError(err).Details["cpf"])

	o = newOrder()
	o.Items = nil
	assert.Equal(t, apperrors.CodeValidation, appCode(t, f.service.Create(context.Background(), o)))

	o = newOrder()
	o.Currency = "reais"
	assert.Equal(t, apperrors.CodeValidation, appCode(t, f.service.Create(context.Background(), o)))

	assert.Empty(t, f.publisher.messages)
	assert.Zero(t, f.lookup.calls)
}

func TestCreate_CustomerCPFFreeText(t *testing.T) {
	f := newFixture(t)

	o := newOrder()
	o.CustomerCPF = " não informado "
	err := f.service.Create(context.Background(), o)
	require.Equal(t, apperrors.CodeInvalidCPF, appCode(t, err))
	assert.Equal(t, "não informado", apperrors.AsAppError(err).Details["cpf"])
	assert.Empty(t, f.publisher.messages)

	blank := newOrder()
	blank.CustomerCPF = "   "
	require.NoError(t, f.service.Create(context.Background(), blank))
	assert.Empty(t, blank.CustomerCPF)
	assert.Empty(t, blank.CustomerCPFFormatted)
	assert.Zero(t, f.lookup.calls)
}

func TestUpdate_StatusLifecycle(t *testing.T) {
	f := newFixture(t)
	o := newOrder()
	require.NoError(t, f.service.Create(context.Background(), o))
	ctx := context.Background()

	for _, next := range []model.OrderStatus{
		model.OrderStatusConfirmed,
		model.OrderStatusPreparing,
		model.OrderStatusReady,
		model.OrderStatusDelivered,
	} {
		require.NoError(t, f.service.Update(ctx, o.ID, &model.OrderUpdate{Status: next}), next)
	}

	got, err := f.service.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusDelivered, got.Status)

	err = f.service.Update(ctx, o.ID, &model.OrderUpdate{Status: model.OrderStatusCancelled})
	assert.Equal(t, apperrors.CodeInvalidTransition, appCode(t, err))

	notes := "changed"
	err = f.service.Update(ctx, o.ID, &model.OrderUpdate{Notes: &notes})
	assert.Equal(t, apperrors.CodeConflict, appCode(t, err))

	// one created + four status changes
	require.Len(t, f.publisher.messages, 5)
	last := f.publisher.messages[4]
	assert.Equal(t, model.EventOrderStatusChanged, last.GetEventType())
	var evt model.OrderStatusChangedEvent
	require.NoError(t, last.DecodeValue(&evt))
	assert.Equal(t, model.OrderStatusReady, evt.From)
	assert.Equal(t, model.OrderStatusDelivered, evt.To)
}

func TestUpdate_Rejections(t *testing.T) {
	f := newFixture(t)
	o := newOrder()
	require.NoError(t, f.service.Create(context.Background(), o))
	ctx := context.Background()

	err := f.service.Update(ctx, o.ID, &model.OrderUpdate{Status: model.OrderStatusReady})
	assert.Equal(t, apperrors.CodeInvalidTransition, appCode(t, err))

	err = f.service.Update(ctx, o.ID, &model.OrderUpdate{Status: "eaten"})
	assert.Equal(t, apperrors.CodeValidation, appCode(t, err))

	err = f.service.Update(ctx, "000000000000000000000999", &model.OrderUpdate{Status: model.OrderStatusConfirmed})
	assert.Equal(t, apperrors.CodeNotFound, appCode(t, err))

	notes := "  extra   ketchup "
	require.NoError(t, f.service.Update(ctx, o.ID, &model.OrderUpdate{Notes: &notes}))
	got, err := f.service.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "extra ketchup", got.Notes)
	assert.Equal(t, model.OrderStatusPending, got.Status)
	assert.Len(t, f.publisher.messages, 1, "notes change publishes nothing")
}

func TestSearchByStore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := newOrder()
	require.NoError(t, f.service.Create(ctx, a))
	b := newOrder()
	require.NoError(t, f.service.Create(ctx, b))
	other := newOrder()
	other.StoreID = "loja-praia"
	require.NoError(t, f.service.Create(ctx, other))
	require.NoError(t, f.service.Update(ctx, b.ID, &model.OrderUpdate{Status: model.OrderStatusCancelled}))

	orders, err := f.service.SearchByStore(ctx, "LOJA-CENTRO", "", 10, 0)
	require.NoError(t, err)
	assert.Len(t, orders, 2)

	orders, err = f.service.SearchByStore(ctx, "loja-centro", "Cancelled", 10, 0)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, b.ID, orders[0].ID)

	_, err = f.service.SearchByStore(ctx, "", "", 10, 0)
	assert.Equal(t, apperrors.CodeInvalidInput, appCode(t, err))

	_, err = f.service.SearchByStore(ctx, "loja-centro", "lost", 10, 0)
	assert.Equal(t, apperrors.CodeInvalidInput, appCode(t, err))
}

func TestTrack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := newOrder()
	require.NoError(t, f.service.Create(ctx, o))

	tracking, err := f.service.Track(ctx, o.TrackingToken)
	require.NoError(t, err)
	assert.Equal(t, o.ID, tracking.OrderID)
	assert.Equal(t, model.OrderStatusPending, tracking.Status)
	assert.Equal(t, 2, tracking.Items)

	_, err = f.service.Track(ctx, "not-a-token")
	assert.Equal(t, apperrors.CodeNotFound, appCode(t, err))

	forged, err := f.sealer.Seal("loja-praia", o.ID)
	require.NoError(t, err)
	_, err = f.service.Track(ctx, forged)
	assert.Equal(t, apperrors.CodeNotFound, appCode(t, err), "store must match")

	require.NoError(t, f.service.Delete(ctx, o.ID))
	_, err = f.service.Track(ctx, o.TrackingToken)
	assert.Equal(t, apperrors.CodeNotFound, appCode(t, err))
}

func TestGetAll(t *testing.T) {
	f := newFixture(t)
	o := newOrder()
	o.CustomerCPF = "11144477735"
	require.NoError(t, f.service.Create(context.Background(), o))

	orders, total, err := f.service.GetAll(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, orders, 1)
	assert.Equal(t, "111.444.777-35", orders[0].CustomerCPFFormatted)
	assert.NotEmpty(t, orders[0].TrackingToken)
}

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to model.OrderStatus
		want     bool
	}{
		{model.OrderStatusPending, model.OrderStatusConfirmed, true},
		{model.OrderStatusPending, model.OrderStatusCancelled, true},
		{model.OrderStatusPending, model.OrderStatusReady, false},
		{model.OrderStatusConfirmed, model.OrderStatusPreparing, true},
		{model.OrderStatusConfirmed, model.OrderStatusCancelled, true},
		{model.OrderStatusPreparing, model.OrderStatusReady, true},
		{model.OrderStatusPreparing, model.OrderStatusCancelled, false},
		{model.OrderStatusReady, model.OrderStatusDelivered, true},
		{model.OrderStatusDelivered, model.OrderStatusPending, false},
		{model.OrderStatusCancelled, model.OrderStatusPending, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}

	assert.True(t, IsTerminal(model.OrderStatusDelivered))
	assert.True(t, IsTerminal(model.OrderStatusCancelled))
	assert.False(t, IsTerminal(model.OrderStatusReady))
}
