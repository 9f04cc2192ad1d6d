package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/property-rental/internal/listing"
	"github.com/iliyamo/property-rental/internal/middleware"
	"github.com/iliyamo/property-rental/internal/model"
	"github.com/iliyamo/property-rental/internal/response"
)

// PropertyHandler serves the public catalogue.
type PropertyHandler struct {
	Catalog *listing.Catalog
}

func NewPropertyHandler(cat *listing.Catalog) *PropertyHandler {
	if cat == nil {
		cat = listing.DefaultCatalog()
	}
	return &PropertyHandler{Catalog: cat}
}

// viewer names the caller of a personalised listing. It never carries the
// email.
type viewer struct {
	UserID uint64     `json:"userId"`
	Role   model.Role `json:"role"`
}

type propertyList struct {
	Properties []listing.Property `json:"properties"`
	Total      int                `json:"total"`
	Viewer     *viewer            `json:"viewer,omitempty"`
}

// positiveInt parses a query value; anything unusable means "no filter".
func positiveInt(c echo.Context, name string) int {
	n, err := strconv.Atoi(strings.TrimSpace(c.QueryParam(name)))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// List filters the catalogue by location, budget range and bedrooms. When
// the optional gate identified the caller the response names the viewer.
func (h *PropertyHandler) List(c echo.Context) error {
	f := listing.Filter{
		Location:  strings.TrimSpace(c.QueryParam("location")),
		MinBudget: positiveInt(c, "minBudget"),
		MaxBudget: positiveInt(c, "maxBudget"),
		Bedrooms:  positiveInt(c, "bedrooms"),
	}
	props := h.Catalog.Search(f)

	out := propertyList{Properties: props, Total: len(props)}
	if p := middleware.Principal(c); p != nil {
		out.Viewer = &viewer{UserID: p.UserID, Role: p.Role}
	}
	return response.Success(c, http.StatusOK, "Properties retrieved successfully", out)
}
