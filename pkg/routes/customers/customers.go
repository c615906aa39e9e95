package customers

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/fern/internal/repositories/customer"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/utils"
)

// Register registers customer CRUD routes
func Register(g *echo.Group) {
	g.POST("", CreateCustomer)
	g.GET("/:id", GetCustomer)
	g.PUT("/:id", UpdateCustomer)
	g.DELETE("/:id", DeleteCustomer)
}

// CreateCustomer creates a new customer record
func CreateCustomer(c echo.Context) error {
	ctx := c.Request().Context()

	req, err := utils.BindRequest[models.UpsertCustomerRequest](c)
	if err != nil {
		return err
	}

	ctx, repo, err := ectoinject.GetContext[*customer.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	created, err := repo.Create(ctx, &models.Customer{
		CompanyName: req.CompanyName,
		Phone:       req.Phone,
		TaxID:       req.TaxID,
		Address:     req.Address,
		Email:       req.Email,
		Town:        req.Town,
		PostalCode:  req.PostalCode,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, created)
}

// GetCustomer gets a customer by ID
func GetCustomer(c echo.Context) error {
	ctx := c.Request().Context()

	id := c.Param("id")
	if id == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "id is required")
	}

	ctx, repo, err := ectoinject.GetContext[*customer.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	found, err := repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, found)
}

// UpdateCustomer updates an existing customer record
func UpdateCustomer(c echo.Context) error {
	ctx := c.Request().Context()

	id := c.Param("id")
	if id == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "id is required")
	}

	req, err := utils.BindRequest[models.UpsertCustomerRequest](c)
	if err != nil {
		return err
	}

	ctx, repo, err := ectoinject.GetContext[*customer.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	updated, err := repo.Update(ctx, &models.Customer{
		ID:          id,
		CompanyName: req.CompanyName,
		Phone:       req.Phone,
		TaxID:       req.TaxID,
		Address:     req.Address,
		Email:       req.Email,
		Town:        req.Town,
		PostalCode:  req.PostalCode,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, updated)
}

// DeleteCustomer soft deletes a customer record
func DeleteCustomer(c echo.Context) error {
	ctx := c.Request().Context()

	id := c.Param("id")
	if id == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "id is required")
	}

	ctx, repo, err := ectoinject.GetContext[*customer.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	if err := repo.SoftDelete(ctx, id); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
}
