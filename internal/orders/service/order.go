package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"

	ordererrors "comanda/internal/orders/errors"
	"comanda/internal/orders/repository"
	"comanda/internal/orders/validator"
	"comanda/pkg/client"
	"comanda/pkg/config"
	"comanda/pkg/cpf"
	apperrors "comanda/pkg/errors"
	"comanda/pkg/kafka"
	"comanda/pkg/locale"
	"comanda/pkg/middleware"
	"comanda/pkg/model"
	"comanda/pkg/sanitizer"
	"comanda/pkg/sealer"
	"comanda/pkg/validation"
)

const customerLookupTimeout = 2 * time.Second

// CustomerLookup resolves a normalized CPF to a registered customer.
// *client.CustomerClient implements it. NewOrderService requires one.
type CustomerLookup interface {
	FindByCPF(ctx context.Context, cpf string) (*model.Customer, error)
}

type OrderService interface {
	Create(ctx context.Context, o *model.Order) error
	GetByID(ctx context.Context, id string) (*model.Order, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Order, int64, error)
	Update(ctx context.Context, id string, updates *model.OrderUpdate) error
	Delete(ctx context.Context, id string) error
	SearchByStore(ctx context.Context, storeID string, status model.OrderStatus, limit int, offset int64) ([]*model.Order, error)
	Track(ctx context.Context, token string) (*model.OrderTracking, error)
}

type orderService struct {
	repo      repository.OrderRepository
	validator *validator.OrderValidator
	customers CustomerLookup
	publisher kafka.Publisher
	sealer    *sealer.Sealer
	metrics   *Metrics
	cfg       *config.Config
}

func NewOrderService(
	repo repository.OrderRepository,
	validator *validator.OrderValidator,
	customers CustomerLookup,
	publisher kafka.Publisher,
	sealer *sealer.Sealer,
	metrics *Metrics,
	cfg *config.Config,
) OrderService {
	return &orderService{
		repo:      repo,
		validator: validator,
		customers: customers,
		publisher: publisher,
		sealer:    sealer,
		metrics:   metrics,
		cfg:       cfg,
	}
}

func (s *orderService) Create(ctx context.Context, o *model.Order) error {
	if err := s.sanitize(o); err != nil {
		return err
	}
	o.ID = ""
	o.Status = model.OrderStatusPending
	o.TotalCents = validator.TotalCents(o.Items)
	if o.Currency == "" {
		o.Currency = locale.CurrencyFor(s.cfg.DefaultCountry)
	}

	if err := s.validator.Validate(o); err != nil {
		s.cfg.Log.Warn("Order validation failed",
			"store_id", o.StoreID,
			"error", err,
		)
		return validationError("Order validation failed", err)
	}

	if o.CustomerCPF != "" {
		s.resolveCustomer(ctx, o)
	}

	if err := s.repo.Create(ctx, o); err != nil {
		s.cfg.Log.Error("Failed to create order",
			"store_id", o.StoreID,
			"error", err,
		)
		return apperrors.Internal("Failed to create order", err)
	}

	s.decorate(o)
	s.metrics.ordersCreated.WithLabelValues(o.Currency).Inc()
	s.metrics.orderValue.Observe(float64(o.TotalCents))

	s.publish(ctx, o.ID, o.StoreID, model.EventOrderCreated, model.OrderCreatedEvent{
		OrderID:    o.ID,
		StoreID:    o.StoreID,
		CustomerID: o.CustomerID,
		TotalCents: o.TotalCents,
		Currency:   o.Currency,
		CreatedAt:  o.CreatedAt,
	})

	s.cfg.Log.Info("Order created successfully",
		"id", o.ID,
		"store_id", o.StoreID,
		"customer_id", o.CustomerID,
		"total_cents", o.TotalCents,
	)
	return nil
}

// resolveCustomer links o to the registered customer holding its CPF. The
// order is placed either way; a customers outage only loses the link.
func (s *orderService) resolveCustomer(ctx context.Context, o *model.Order) {
	lookupCtx, cancel := context.WithTimeout(ctx, customerLookupTimeout)
	defer cancel()

	customer, err := s.customers.FindByCPF(lookupCtx, o.CustomerCPF)
	switch {
	case err == nil:
		o.CustomerID = customer.ID
		s.metrics.customerLookups.WithLabelValues(lookupFound).Inc()
	case errors.Is(err, client.ErrCustomerNotFound):
		s.metrics.customerLookups.WithLabelValues(lookupNotFound).Inc()
	default:
		s.metrics.customerLookups.WithLabelValues(lookupError).Inc()
		s.cfg.Log.Warn("Customer lookup failed, order placed without customer",
			"store_id", o.StoreID,
			"cpf", cpf.Mask(o.CustomerCPF),
			"error", err,
		)
	}
}

func (s *orderService) GetByID(ctx context.Context, id string) (*model.Order, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Order ID cannot be empty")
	}

	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to retrieve order")
	}

	s.decorate(o)
	return o, nil
}

func (s *orderService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Order, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	sharedCtx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()
	g, gctx := errgroup.WithContext(sharedCtx)

	var count int64
	var orders []*model.Order

	g.Go(func() error {
		var err error
		count, err = s.repo.Count(gctx)
		if err != nil {
			s.cfg.Log.Error("Failed to count orders", "error", err)
			return apperrors.Internal("Failed to count orders", err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		orders, err = s.repo.FindAll(gctx, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to get all orders",
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			return apperrors.Internal("Failed to retrieve orders", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	for _, o := range orders {
		s.decorate(o)
	}
	return orders, count, nil
}

func (s *orderService) Update(ctx context.Context, id string, updates *model.OrderUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Order ID cannot be empty")
	}

	updates.Status = strings.ToLower(strings.TrimSpace(updates.Status))
	if updates.Notes != nil {
		notes := sanitizer.TrimAndNormalize(*updates.Notes)
		updates.Notes = &notes
	}
	if err := s.validator.ValidateUpdate(updates); err != nil {
		return validationError("Order validation failed", err)
	}

	var before, after model.Order
	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		existing, err := s.repo.FindByID(sessCtx, id)
		if err != nil {
			return s.mapRepoError(err, id, "Failed to check order existence")
		}

		merged, err := applyOrderUpdate(existing, updates)
		if err != nil {
			return err
		}

		if err := s.repo.Update(sessCtx, id, existing.Status, merged); err != nil {
			return s.mapRepoError(err, id, "Failed to update order")
		}
		before, after = *existing, *merged
		return nil
	})
	if err != nil {
		return err
	}

	if before.Status != after.Status {
		s.metrics.statusChanges.WithLabelValues(after.Status).Inc()
		s.publish(ctx, id, after.StoreID, model.EventOrderStatusChanged, model.OrderStatusChangedEvent{
			OrderID:    id,
			StoreID:    after.StoreID,
			CustomerID: after.CustomerID,
			From:       before.Status,
			To:         after.Status,
			ChangedAt:  after.UpdatedAt,
		})
	}

	s.cfg.Log.Info("Order updated successfully",
		"id", id,
		"from", before.Status,
		"to", after.Status,
	)
	return nil
}

// applyOrderUpdate returns existing with updates applied, enforcing the
// status lifecycle. Delivered and cancelled orders cannot change at all.
func applyOrderUpdate(existing *model.Order, updates *model.OrderUpdate) (*model.Order, error) {
	merged := *existing

	if updates.Status != "" && updates.Status != existing.Status {
		if !CanTransition(existing.Status, updates.Status) {
			return nil, apperrors.InvalidTransition(existing.Status, updates.Status)
		}
		merged.Status = updates.Status
	}

	if updates.Notes != nil && *updates.Notes != existing.Notes {
		if IsTerminal(existing.Status) {
			return nil, apperrors.Conflict("Order is " + existing.Status + " and can no longer be changed")
		}
		merged.Notes = *updates.Notes
	}

	return &merged, nil
}

func (s *orderService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Order ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapRepoError(err, id, "Failed to delete order")
	}

	s.cfg.Log.Info("Order deleted successfully", "id", id)
	return nil
}

func (s *orderService) SearchByStore(ctx context.Context, storeID string, status model.OrderStatus, limit int, offset int64) ([]*model.Order, error) {
	storeID = sanitizer.NormalizeLabel(storeID)
	if storeID == "" {
		return nil, apperrors.InvalidInput("store_id query parameter is required")
	}
	status = strings.ToLower(strings.TrimSpace(status))
	if status != "" {
		if !IsKnownStatus(status) {
			return nil, apperrors.InvalidInput("unknown status: " + status)
		}
	}

	orders, err := s.repo.SearchByStore(ctx, storeID, status, config.NormalizePaginationLimit(limit), config.NormalizeOffset(offset))
	if err != nil {
		s.cfg.Log.Error("Failed to search orders",
			"store_id", storeID,
			"status", status,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to search orders", err)
	}

	for _, o := range orders {
		s.decorate(o)
	}
	return orders, nil
}

// Track resolves a public tracking token. Every failure looks like an unknown
// order so tokens cannot be guessed.
func (s *orderService) Track(ctx context.Context, token string) (*model.OrderTracking, error) {
	if s.sealer == nil {
		return nil, apperrors.NotFound("Order")
	}

	storeID, orderID, err := s.sealer.Open(token)
	if err != nil {
		return nil, apperrors.NotFound("Order")
	}

	o, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ordererrors.ErrNotFound) || errors.Is(err, ordererrors.ErrInvalidID) {
			return nil, apperrors.NotFound("Order")
		}
		s.cfg.Log.Error("Failed to track order", "id", orderID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve order", err)
	}
	if o.StoreID != storeID {
		return nil, apperrors.NotFound("Order")
	}

	return &model.OrderTracking{
		OrderID:   o.ID,
		StoreID:   o.StoreID,
		Status:    o.Status,
		Items:     len(o.Items),
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}, nil
}

// decorate fills the response-only fields.
func (s *orderService) decorate(o *model.Order) {
	if o.CustomerCPF != "" {
		o.CustomerCPFFormatted = cpf.Format(o.CustomerCPF)
	}
	if s.sealer == nil || o.ID == "" {
		return
	}
	token, err := s.sealer.Seal(o.StoreID, o.ID)
	if err != nil {
		s.cfg.Log.Warn("Failed to mint tracking token", "id", o.ID, "error", err)
		return
	}
	o.TrackingToken = token
}

// publish keys order events by order id; the store id also travels as a header
// so consumers can filter without decoding the payload.
func (s *orderService) publish(ctx context.Context, key, storeID, eventType string, payload any) {
	msg, err := kafka.NewMessage().
		WithKey(key).
		WithEventType(eventType).
		WithHeader(kafka.HeaderStoreID, storeID).
		WithSchemaVersion(model.EventSchemaVersion).
		WithSource(s.cfg.ServiceName).
		WithCorrelationID(middleware.RequestIDFromContext(ctx)).
		WithValue(payload).
		Build()
	if err == nil {
		err = s.publisher.Publish(ctx, msg)
	}
	if err != nil {
		s.cfg.Log.Warn("Failed to publish order event",
			"id", key,
			"event_type", eventType,
			"error", err,
		)
	}
}

func (s *orderService) mapRepoError(err error, id, message string) error {
	if appErr := apperrors.AsAppError(err); appErr != nil {
		return appErr
	}
	if errors.Is(err, ordererrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Order", id)
	}
	if errors.Is(err, ordererrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid order ID format")
	}
	if errors.Is(err, ordererrors.ErrStatusChanged) {
		return apperrors.Conflict("Order was changed by another request, retry")
	}
	s.cfg.Log.Error(message, "id", id, "error", err)
	return apperrors.Internal(message, err)
}

// sanitize normalizes o in place. A customer CPF that is present but not valid
// is rejected here so the error can carry its display form. Free text such as
// "não informado" counts as present; only blank input means no CPF.
func (s *orderService) sanitize(o *model.Order) error {
	o.StoreID = sanitizer.NormalizeLabel(o.StoreID)
	o.Notes = sanitizer.TrimAndNormalize(o.Notes)
	o.Currency = strings.ToUpper(strings.TrimSpace(o.Currency))
	for i := range o.Items {
		o.Items[i].Name = sanitizer.NormalizeName(o.Items[i].Name)
	}

	raw := o.CustomerCPF
	o.CustomerCPF = sanitizer.NormalizeCPF(raw)
	if o.CustomerCPF == "" && strings.TrimSpace(raw) != "" {
		return apperrors.InvalidCPF(cpfDisplay(raw))
	}
	return nil
}

// cpfDisplay is the form of a rejected CPF echoed back to the caller.
func cpfDisplay(raw string) string {
	if formatted := sanitizer.FormatCPF(raw); formatted != "" {
		return formatted
	}
	return sanitizer.TrimAndNormalize(raw)
}

// IsKnownStatus reports whether status is one of the order lifecycle states.
func IsKnownStatus(status model.OrderStatus) bool {
	switch status {
	case model.OrderStatusPending, model.OrderStatusConfirmed, model.OrderStatusPreparing,
		model.OrderStatusReady, model.OrderStatusDelivered, model.OrderStatusCancelled:
		return true
	}
	return false
}

func validationError(message string, err error) error {
	var verrs validation.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation(message, verrs.Fields())
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}
