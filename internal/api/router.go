package api

import (
	"database/sql"
	"net/http"

	"github.com/yunseo-dev/gearledger/internal/model"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	usersHandler := &UsersHandler{DB: db}
	cohortsHandler := &CohortsHandler{DB: db}
	checkoutsHandler := &CheckoutsHandler{DB: db}
	equipmentHandler := &EquipmentHandler{DB: db}
	damageHandler := &DamageHandler{DB: db}
	sheetsHandler := &SheetsHandler{DB: db}
	adminHandler := &AdminHandler{DB: db}

	authMW := AuthMiddleware(jwtSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)
	requireManager := RequireRole(model.RoleManager)

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated routes.
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Users (admin only).
	mux.Handle("GET /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("POST /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.Create))))
	mux.Handle("PUT /api/users/{id}/role", authMW(requireAdmin(http.HandlerFunc(usersHandler.UpdateRole))))
	mux.Handle("PUT /api/users/{id}/password", authMW(requireAdmin(http.HandlerFunc(usersHandler.ResetPassword))))
	mux.Handle("DELETE /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Delete))))

	// Cohorts: read (all roles), write (manager+).
	mux.Handle("GET /api/cohorts", authMW(http.HandlerFunc(cohortsHandler.List)))
	mux.Handle("POST /api/cohorts", authMW(requireManager(http.HandlerFunc(cohortsHandler.Create))))
	mux.Handle("PUT /api/cohorts/{id}/color", authMW(requireManager(http.HandlerFunc(cohortsHandler.SetColor))))
	mux.Handle("PUT /api/cohorts/{id}/hidden", authMW(requireManager(http.HandlerFunc(cohortsHandler.SetHidden))))
	mux.Handle("GET /api/cohorts/{id}/roster", authMW(http.HandlerFunc(cohortsHandler.Roster)))
	mux.Handle("POST /api/cohorts/{id}/personnel", authMW(requireManager(http.HandlerFunc(cohortsHandler.AddPersonnel))))

	// Checkout ledger (all roles, this is the daily workflow).
	mux.Handle("POST /api/checkouts", authMW(http.HandlerFunc(checkoutsHandler.Create)))
	mux.Handle("PUT /api/checkouts/{id}/return", authMW(http.HandlerFunc(checkoutsHandler.Return)))
	mux.Handle("PUT /api/checkouts/{id}/undo-return", authMW(http.HandlerFunc(checkoutsHandler.UndoReturn)))
	mux.Handle("PUT /api/checkouts/{id}/replace", authMW(http.HandlerFunc(checkoutsHandler.Replace)))
	mux.Handle("PUT /api/checkouts/{id}/remarks", authMW(http.HandlerFunc(checkoutsHandler.SetRemarks)))
	mux.Handle("POST /api/checkouts/batch-return", authMW(http.HandlerFunc(checkoutsHandler.BatchReturn)))

	// Equipment registry and projections.
	mux.Handle("GET /api/equipment", authMW(http.HandlerFunc(equipmentHandler.List)))
	mux.Handle("GET /api/equipment/types", authMW(http.HandlerFunc(equipmentHandler.Types)))
	mux.Handle("PUT /api/equipment/{id}/inspected", authMW(requireManager(http.HandlerFunc(equipmentHandler.MarkInspected))))
	mux.Handle("GET /api/inventory", authMW(http.HandlerFunc(equipmentHandler.Inventory)))
	mux.Handle("GET /api/stats", authMW(http.HandlerFunc(equipmentHandler.Stats)))
	mux.Handle("GET /api/stats/types", authMW(http.HandlerFunc(equipmentHandler.TypeStats)))
	mux.Handle("GET /api/stats/cohort-types", authMW(http.HandlerFunc(equipmentHandler.CohortTypeStats)))
	mux.Handle("GET /api/colors", authMW(http.HandlerFunc(equipmentHandler.ListColors)))
	mux.Handle("PUT /api/colors", authMW(requireManager(http.HandlerFunc(equipmentHandler.SetColor))))

	// Damage reports and photos.
	mux.Handle("GET /api/damage", authMW(http.HandlerFunc(damageHandler.List)))
	mux.Handle("POST /api/damage", authMW(http.HandlerFunc(damageHandler.Create)))
	mux.Handle("POST /api/damage/{id}/images", authMW(http.HandlerFunc(damageHandler.UploadImage)))
	mux.Handle("DELETE /api/damage/{id}/images/{imageID}", authMW(http.HandlerFunc(damageHandler.DeleteImage)))
	mux.Handle("GET /api/damage/images/{id}", authMW(http.HandlerFunc(damageHandler.GetImage)))

	// Spreadsheet import/export (manager+).
	mux.Handle("POST /api/import/roster", authMW(requireManager(http.HandlerFunc(sheetsHandler.ImportRoster))))
	mux.Handle("POST /api/import/stock", authMW(requireManager(http.HandlerFunc(sheetsHandler.ImportStock))))
	mux.Handle("GET /api/export/roster", authMW(http.HandlerFunc(sheetsHandler.ExportRoster)))
	mux.Handle("GET /api/export/inventory", authMW(http.HandlerFunc(sheetsHandler.ExportInventory)))

	// Factory reset (admin only).
	mux.Handle("POST /api/reset", authMW(requireAdmin(http.HandlerFunc(adminHandler.Reset))))

	return mux
}
