package duplicate

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/fern/pkg/matching"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/utils"
)

// Register registers duplicate detection routes
func Register(g *echo.Group) {
	g.POST("/check", CheckDuplicates)
	g.GET("/phone-search", PhoneSearch)
}

// CheckDuplicates scores registry records against a prospective customer
// and returns ranked potential duplicates
func CheckDuplicates(c echo.Context) error {
	ctx := c.Request().Context()

	req, err := utils.BindRequest[models.CheckDuplicatesRequest](c)
	if err != nil {
		return err
	}

	ctx, engine, err := ectoinject.GetContext[*matching.Engine](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	threshold := -1
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	matches, err := engine.FindPotentialDuplicates(ctx, models.DuplicateSearchInput{
		CompanyName: req.CompanyName,
		Phone:       req.Phone,
		TaxID:       req.TaxID,
	}, threshold)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.CheckDuplicatesResponse{
		Items:      matches,
		TotalCount: len(matches),
	})
}

// PhoneSearch finds customers by phone substring, optionally boosted by
// company name
func PhoneSearch(c echo.Context) error {
	ctx := c.Request().Context()

	phone := c.QueryParam("phone")
	if phone == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "phone query parameter is required")
	}
	companyName := c.QueryParam("company_name")

	ctx, engine, err := ectoinject.GetContext[*matching.Engine](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	matches, err := engine.FindByPhoneWithNameBoost(ctx, phone, companyName)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.CheckDuplicatesResponse{
		Items:      matches,
		TotalCount: len(matches),
	})
}
