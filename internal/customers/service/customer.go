package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"

	customererrors "comanda/internal/customers/errors"
	"comanda/internal/customers/repository"
	"comanda/internal/customers/validator"
	"comanda/pkg/config"
	"comanda/pkg/cpf"
	apperrors "comanda/pkg/errors"
	"comanda/pkg/kafka"
	"comanda/pkg/locale"
	"comanda/pkg/middleware"
	"comanda/pkg/model"
	"comanda/pkg/sanitizer"
	"comanda/pkg/validation"
)

type CustomerService interface {
	Create(ctx context.Context, c *model.Customer) error
	GetByID(ctx context.Context, id string) (*model.Customer, error)
	GetByCPF(ctx context.Context, raw string) (*model.Customer, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Customer, int64, error)
	Update(ctx context.Context, id string, updates *model.CustomerUpdate) error
	Delete(ctx context.Context, id string) error
	RecordOrder(ctx context.Context, customerID string, at time.Time) error
	FormatCPF(raw string) model.CPFFormatResult
	ValidateCPF(raw string) model.CPFValidationResult
}

type customerService struct {
	repo      repository.CustomerRepository
	validator *validator.CustomerValidator
	publisher kafka.Publisher
	metrics   *Metrics
	cfg       *config.Config
}

func NewCustomerService(
	repo repository.CustomerRepository,
	validator *validator.CustomerValidator,
	publisher kafka.Publisher,
	metrics *Metrics,
	cfg *config.Config,
) CustomerService {
	return &customerService{
		repo:      repo,
		validator: validator,
		publisher: publisher,
		metrics:   metrics,
		cfg:       cfg,
	}
}

func (s *customerService) Create(ctx context.Context, c *model.Customer) error {
	if err := s.sanitize(c); err != nil {
		return err
	}
	c.ID = ""
	c.OrdersCount = 0
	c.LastOrderAt = nil

	if err := s.validator.Validate(c); err != nil {
		s.cfg.Log.Warn("Customer validation failed",
			"cpf", cpf.Mask(c.CPF),
			"error", err,
		)
		return validationError("Customer validation failed", err)
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		_, err := s.repo.FindByCPF(sessCtx, c.CPF)
		if err == nil {
			return apperrors.Conflict("Customer with this CPF already exists")
		}
		if !errors.Is(err, customererrors.ErrNotFound) {
			return apperrors.Internal("Failed to check for existing customer", err)
		}

		if err := s.repo.Create(sessCtx, c); err != nil {
			if errors.Is(err, customererrors.ErrDuplicateCPF) {
				return apperrors.Conflict("Customer with this CPF already exists")
			}
			return apperrors.Internal("Failed to create customer", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create customer",
			"cpf", cpf.Mask(c.CPF),
			"error", err,
		)
		return err
	}

	c.CPFFormatted = cpf.Format(c.CPF)
	s.metrics.customersCreated.Inc()
	s.publishRegistered(ctx, c)

	s.cfg.Log.Info("Customer created successfully",
		"id", c.ID,
		"cpf", cpf.Mask(c.CPF),
	)
	return nil
}

func (s *customerService) publishRegistered(ctx context.Context, c *model.Customer) {
	msg, err := kafka.NewMessage().
		WithKey(c.ID).
		WithEventType(model.EventCustomerRegistered).
		WithSchemaVersion(model.EventSchemaVersion).
		WithSource(s.cfg.ServiceName).
		WithCorrelationID(middleware.RequestIDFromContext(ctx)).
		WithValue(model.CustomerRegisteredEvent{
			CustomerID: c.ID,
			CPFMasked:  cpf.Mask(c.CPF),
			Phone:      c.Phone,
			Timezone:   locale.InferTimezoneFromPhone(c.Phone),
			CreatedAt:  c.CreatedAt,
		}).
		Build()
	if err == nil {
		err = s.publisher.Publish(ctx, msg)
	}
	if err != nil {
		s.cfg.Log.Warn("Failed to publish customer event",
			"id", c.ID,
			"event_type", model.EventCustomerRegistered,
			"error", err,
		)
	}
}

func (s *customerService) GetByID(ctx context.Context, id string) (*model.Customer, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Customer ID cannot be empty")
	}

	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to retrieve customer")
	}

	c.CPFFormatted = cpf.Format(c.CPF)
	return c, nil
}

// GetByCPF accepts the CPF with or without punctuation.
func (s *customerService) GetByCPF(ctx context.Context, raw string) (*model.Customer, error) {
	normalized := cpf.Normalize(raw)
	if normalized == "" {
		s.metrics.cpfChecks.WithLabelValues("lookup", outcomeInvalid).Inc()
		return nil, apperrors.InvalidCPF(cpf.Format(raw))
	}
	s.metrics.cpfChecks.WithLabelValues("lookup", outcomeValid).Inc()

	c, err := s.repo.FindByCPF(ctx, normalized)
	if err != nil {
		if errors.Is(err, customererrors.ErrNotFound) {
			return nil, apperrors.NotFound("Customer")
		}
		s.cfg.Log.Error("Failed to get customer by CPF",
			"cpf", cpf.Mask(normalized),
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve customer", err)
	}

	c.CPFFormatted = cpf.Format(c.CPF)
	return c, nil
}

func (s *customerService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Customer, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	sharedCtx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()
	g, gctx := errgroup.WithContext(sharedCtx)

	var count int64
	var customers []*model.Customer

	g.Go(func() error {
		var err error
		count, err = s.repo.Count(gctx)
		if err != nil {
			s.cfg.Log.Error("Failed to count customers", "error", err)
			return apperrors.Internal("Failed to count customers", err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		customers, err = s.repo.FindAll(gctx, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to get all customers",
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			return apperrors.Internal("Failed to retrieve customers", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	for _, c := range customers {
		c.CPFFormatted = cpf.Format(c.CPF)
	}
	return customers, count, nil
}

func (s *customerService) Update(ctx context.Context, id string, updates *model.CustomerUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Customer ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.mapRepoError(err, id, "Failed to check customer existence")
	}

	s.sanitizeUpdate(updates)
	if err := s.validator.ValidateUpdate(updates); err != nil {
		return validationError("Customer validation failed", err)
	}

	merged := mergeCustomerUpdates(existing, updates)
	if err := s.validator.Validate(merged); err != nil {
		s.cfg.Log.Warn("Customer validation failed",
			"id", id,
			"error", err,
		)
		return validationError("Customer validation failed", err)
	}

	if _, err := s.repo.Update(ctx, id, merged); err != nil {
		return s.mapRepoError(err, id, "Failed to update customer")
	}

	s.cfg.Log.Info("Customer updated successfully", "id", id)
	return nil
}

func (s *customerService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Customer ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapRepoError(err, id, "Failed to delete customer")
	}

	s.cfg.Log.Info("Customer deleted successfully", "id", id)
	return nil
}

func (s *customerService) RecordOrder(ctx context.Context, customerID string, at time.Time) error {
	if at.IsZero() {
		at = time.Now().UTC()
	}
	if err := s.repo.IncrementOrders(ctx, customerID, at); err != nil {
		return s.mapRepoError(err, customerID, "Failed to record customer order")
	}
	s.metrics.ordersRecorded.Inc()
	return nil
}

// FormatCPF backs the registration form's input-change handler.
func (s *customerService) FormatCPF(raw string) model.CPFFormatResult {
	formatted := cpf.Format(raw)
	digits := len(cpf.Digits(formatted))
	complete := digits == cpf.Length

	outcome := outcomePartial
	if complete {
		outcome = outcomeComplete
	}
	s.metrics.cpfChecks.WithLabelValues("format", outcome).Inc()

	return model.CPFFormatResult{
		Formatted: formatted,
		Digits:    digits,
		Complete:  complete,
	}
}

// ValidateCPF backs the form's submission check.
func (s *customerService) ValidateCPF(raw string) model.CPFValidationResult {
	valid := cpf.IsValid(raw)

	outcome := outcomeInvalid
	if valid {
		outcome = outcomeValid
	}
	s.metrics.cpfChecks.WithLabelValues("validate", outcome).Inc()

	return model.CPFValidationResult{
		Valid:     valid,
		Formatted: cpf.Format(raw),
	}
}

func (s *customerService) mapRepoError(err error, id, message string) error {
	if errors.Is(err, customererrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Customer", id)
	}
	if errors.Is(err, customererrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid customer ID format")
	}
	s.cfg.Log.Error(message, "id", id, "error", err)
	return apperrors.Internal(message, err)
}

// sanitize normalizes c in place. A CPF that is present but not valid is
// rejected here so the error can carry its display form. Blank input is left
// to the required-field check.
func (s *customerService) sanitize(c *model.Customer) error {
	c.Name = sanitizer.NormalizeName(c.Name)
	c.Email = sanitizer.NormalizeEmail(c.Email)
	if phone := sanitizer.NormalizePhone(c.Phone); phone != "" {
		c.Phone = phone
	} else {
		c.Phone = sanitizer.TrimAndNormalize(c.Phone)
	}

	raw := c.CPF
	c.CPF = sanitizer.NormalizeCPF(raw)
	if c.CPF == "" && strings.TrimSpace(raw) != "" {
		s.metrics.cpfChecks.WithLabelValues("register", outcomeInvalid).Inc()
		display := sanitizer.FormatCPF(raw)
		if display == "" {
			display = sanitizer.TrimAndNormalize(raw)
		}
		return apperrors.InvalidCPF(display)
	}
	return nil
}

func (s *customerService) sanitizeUpdate(u *model.CustomerUpdate) {
	u.Name = sanitizer.NormalizeName(u.Name)
	u.Email = sanitizer.NormalizeEmail(u.Email)
	if u.Phone != "" {
		if phone := sanitizer.NormalizePhone(u.Phone); phone != "" {
			u.Phone = phone
		} else {
			u.Phone = sanitizer.TrimAndNormalize(u.Phone)
		}
	}
}

func mergeCustomerUpdates(existing *model.Customer, updates *model.CustomerUpdate) *model.Customer {
	merged := *existing
	if updates.Name != "" {
		merged.Name = updates.Name
	}
	if updates.Phone != "" {
		merged.Phone = updates.Phone
	}
	if updates.Email != "" {
		merged.Email = updates.Email
	}
	return &merged
}

func validationError(message string, err error) error {
	var verrs validation.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation(message, verrs.Fields())
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}
