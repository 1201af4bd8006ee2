package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"payvault/internal/service"
)

type AdminHandler struct {
	migrator        *service.LegacyMigrator
	migratorEnabled bool
}

func NewAdminHandler(migrator *service.LegacyMigrator, migratorEnabled bool) *AdminHandler {
	return &AdminHandler{
		migrator:        migrator,
		migratorEnabled: migratorEnabled,
	}
}

// RunLegacyMigration triggers a migration pass. The migrator is idempotent,
// so operators can call this as often as they like.
func (h *AdminHandler) RunLegacyMigration(c echo.Context) error {
	if !h.migratorEnabled {
		return echo.NewHTTPError(http.StatusForbidden, "legacy migration is disabled")
	}

	summary, err := h.migrator.Run(c.Request().Context())
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, summary)
}
