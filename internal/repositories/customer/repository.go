package customer

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// candidate searches are capped server-side; the engine trims further
// after scoring
const searchLimit = 200

var customerColumns = []string{
	"id", "company_name", "phone", "tax_id", "address", "email", "town", "postal_code", "created_at", "updated_at", "deleted_at",
}

// Repository handles customer persistence and candidate retrieval
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new customer repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new customer
func (r *Repository) Create(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	ctx, span := tracing.StartSpan(ctx, "customer.Repository.Create")
	defer span.End()

	if customer.ID == "" {
		customer.ID = uuid.New().String()
	}
	customer.CreatedAt = time.Now().UTC()
	customer.UpdatedAt = customer.CreatedAt

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("customers")
	sb.Cols("id", "company_name", "phone", "tax_id", "address", "email", "town", "postal_code", "created_at", "updated_at")
	sb.Values(customer.ID, customer.CompanyName, customer.Phone, customer.TaxID, customer.Address, customer.Email, customer.Town, customer.PostalCode, customer.CreatedAt, customer.UpdatedAt)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"customer_id": customer.ID}).Error("Failed to create customer")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create customer")
	}

	return customer, nil
}

// GetByID retrieves a customer by ID
func (r *Repository) GetByID(ctx context.Context, id string) (*models.Customer, error) {
	ctx, span := tracing.StartSpan(ctx, "customer.Repository.GetByID")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(customerColumns...)
	sb.From("customers")
	sb.Where(
		sb.Equal("id", id),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	var customer models.Customer
	if err := r.db.GetContext(ctx, &customer, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("customer %s not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get customer")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get customer")
	}

	return &customer, nil
}

// Update updates a customer's fields
func (r *Repository) Update(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	ctx, span := tracing.StartSpan(ctx, "customer.Repository.Update")
	defer span.End()

	customer.UpdatedAt = time.Now().UTC()

	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("customers")
	sb.Set(
		sb.Assign("company_name", customer.CompanyName),
		sb.Assign("phone", customer.Phone),
		sb.Assign("tax_id", customer.TaxID),
		sb.Assign("address", customer.Address),
		sb.Assign("email", customer.Email),
		sb.Assign("town", customer.Town),
		sb.Assign("postal_code", customer.PostalCode),
		sb.Assign("updated_at", customer.UpdatedAt),
	)
	sb.Where(
		sb.Equal("id", customer.ID),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"customer_id": customer.ID}).Error("Failed to update customer")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to update customer")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("customer %s not found", customer.ID))
	}

	return customer, nil
}

// SoftDelete marks a customer as deleted
func (r *Repository) SoftDelete(ctx context.Context, id string) error {
	ctx, span := tracing.StartSpan(ctx, "customer.Repository.SoftDelete")
	defer span.End()

	now := time.Now().UTC()
	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("customers")
	sb.Set(
		sb.Assign("deleted_at", now),
		sb.Assign("updated_at", now),
	)
	sb.Where(
		sb.Equal("id", id),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to soft delete customer")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete customer")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("customer %s not found", id))
	}

	return nil
}

// GetByTaxID retrieves active customers with an exact tax ID
func (r *Repository) GetByTaxID(ctx context.Context, taxID string) ([]models.Customer, error) {
	ctx, span := tracing.StartSpan(ctx, "customer.Repository.GetByTaxID")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(customerColumns...)
	sb.From("customers")
	sb.Where(
		sb.Equal("tax_id", taxID),
		sb.IsNull("deleted_at"),
	)
	sb.Limit(searchLimit)

	query, args := sb.Build()
	var customers []models.Customer
	if err := r.db.SelectContext(ctx, &customers, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get customers by tax_id")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get customers by tax id")
	}

	return customers, nil
}

// SearchByPhoneSubstring retrieves active customers whose phone digits
// contain the given digit sequence. The phone_digits column is generated
// from the raw phone, so separators in stored values do not matter.
func (r *Repository) SearchByPhoneSubstring(ctx context.Context, digits string) ([]models.Customer, error) {
	ctx, span := tracing.StartSpan(ctx, "customer.Repository.SearchByPhoneSubstring")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(customerColumns...)
	sb.From("customers")
	sb.Where(
		sb.Like("phone_digits", "%"+escapeLike(digits)+"%"),
		sb.IsNull("deleted_at"),
	)
	sb.Limit(searchLimit)

	query, args := sb.Build()
	var customers []models.Customer
	if err := r.db.SelectContext(ctx, &customers, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to search customers by phone")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to search customers by phone")
	}

	return customers, nil
}

// SearchByName retrieves active customers by company name: exact
// case-insensitive matches first, then rows where every name token of
// two or more characters appears as a substring. Results are
// deduplicated with exact matches kept first.
func (r *Repository) SearchByName(ctx context.Context, name string) ([]models.Customer, error) {
	ctx, span := tracing.StartSpan(ctx, "customer.Repository.SearchByName")
	defer span.End()

	exact, err := r.searchByNameExact(ctx, name)
	if err != nil {
		return nil, err
	}

	tokenized, err := r.searchByNameTokens(ctx, name)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(exact))
	customers := make([]models.Customer, 0, len(exact)+len(tokenized))
	for _, c := range exact {
		seen[c.ID] = true
		customers = append(customers, c)
	}
	for _, c := range tokenized {
		if seen[c.ID] {
			continue
		}
		customers = append(customers, c)
	}

	return customers, nil
}

func (r *Repository) searchByNameExact(ctx context.Context, name string) ([]models.Customer, error) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(customerColumns...)
	sb.From("customers")
	sb.Where(
		sb.Equal("LOWER(company_name)", strings.ToLower(name)),
		sb.IsNull("deleted_at"),
	)
	sb.Limit(searchLimit)

	query, args := sb.Build()
	var customers []models.Customer
	if err := r.db.SelectContext(ctx, &customers, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to search customers by exact name")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to search customers by name")
	}

	return customers, nil
}

func (r *Repository) searchByNameTokens(ctx context.Context, name string) ([]models.Customer, error) {
	var conditions []string

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	for _, token := range strings.Fields(name) {
		if len([]rune(token)) < 2 {
			continue
		}
		conditions = append(conditions, sb.ILike("company_name", "%"+escapeLike(token)+"%"))
	}
	if len(conditions) == 0 {
		return nil, nil
	}

	sb.Select(customerColumns...)
	sb.From("customers")
	conditions = append(conditions, sb.IsNull("deleted_at"))
	sb.Where(conditions...)
	sb.Limit(searchLimit)

	query, args := sb.Build()
	var customers []models.Customer
	if err := r.db.SelectContext(ctx, &customers, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to search customers by name tokens")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to search customers by name")
	}

	return customers, nil
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}
