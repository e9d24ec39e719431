package main

import (
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go-pharmacy-pos/internal/assistant"
	"go-pharmacy-pos/internal/cache"
	"go-pharmacy-pos/internal/handler"
	"go-pharmacy-pos/internal/middleware"
	"go-pharmacy-pos/internal/model"
	"go-pharmacy-pos/internal/repository"
	"go-pharmacy-pos/internal/service"
	"go-pharmacy-pos/internal/ws"
	"go-pharmacy-pos/pkg/database"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// 2. Setup Database
	db := database.ConnectDB()
	if err := db.AutoMigrate(
		&model.Drug{}, &model.Supplier{}, &model.Customer{},
		&model.Sale{}, &model.SaleItem{},
		&model.Return{}, &model.ReturnItem{},
		&model.Purchase{}, &model.PurchaseItem{},
		&model.Shift{}, &model.CashTransaction{},
		&model.AppState{},
		&model.User{}, &model.Privilege{}, &model.Role{},
	); err != nil {
		log.Fatalf("auto-migrate failed: %v", err)
	}
	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("data migrations failed: %v", err)
	}

	// 3. Seed default privileges, roles, and admin user
	seedPrivilegesRolesAndAdmin(db)

	// 4. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 5. Dependency Injection (Wiring Layers)
	drugRepo := repository.NewDrugRepo(db)
	saleRepo := repository.NewSaleRepo(db)
	customerRepo := repository.NewCustomerRepo(db)
	supplierRepo := repository.NewSupplierRepo(db)
	purchaseRepo := repository.NewPurchaseRepo(db)
	shiftRepo := repository.NewShiftRepo(db)
	userRepo := repository.NewUserRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)

	reportCache := buildReportCache()

	invService := service.NewInventoryService(drugRepo, db, wsHub)
	salesService := service.NewSalesService(db, drugRepo, saleRepo, customerRepo, shiftRepo, wsHub)
	purchaseService := service.NewPurchaseService(db, purchaseRepo, drugRepo, wsHub)
	customerService := service.NewCustomerService(customerRepo, saleRepo)
	shiftService := service.NewShiftService(shiftRepo, db, wsHub)
	reportService := service.NewReportService(saleRepo, reportCache)
	authService := service.NewAuthService(userRepo, wsHub)
	userService := service.NewUserService(userRepo, privilegeRepo, roleRepo)
	assistantService := assistant.NewAssistant(os.Getenv("OPENAI_API_KEY"))

	invHandler := handler.NewInventoryHandler(invService)
	salesHandler := handler.NewSalesHandler(salesService)
	purchaseHandler := handler.NewPurchaseHandler(purchaseService)
	customerHandler := handler.NewCustomerHandler(customerService)
	supplierHandler := handler.NewSupplierHandler(supplierRepo)
	shiftHandler := handler.NewShiftHandler(shiftService)
	reportHandler := handler.NewReportHandler(reportService)
	assistantHandler := handler.NewAssistantHandler(assistantService)
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler(roleRepo)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Pharmacy POS v1.0",
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 7. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/reset-password", authHandler.ResetPassword)
	auth.Post("/validate-token", authHandler.ValidateToken)
	auth.Post("/heartbeat", middleware.RequireAuth(userRepo), authHandler.Heartbeat)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(userRepo))

	// Drug catalog
	protected.Get("/drugs", invHandler.GetDrugs)
	protected.Get("/drugs/low-stock", invHandler.GetLowStock)
	protected.Get("/drugs/expiring", invHandler.GetExpiringSoon)
	protected.Get("/drugs/barcode/:code", invHandler.GetDrugByBarcode)
	protected.Get("/drugs/:id", invHandler.GetDrug)
	protected.Post("/drugs", middleware.RequirePrivilege("drug:create"), invHandler.CreateDrug)
	protected.Put("/drugs/:id", middleware.RequirePrivilege("drug:update"), invHandler.UpdateDrug)
	protected.Delete("/drugs/:id", middleware.RequirePrivilege("drug:delete"), invHandler.DeleteDrug)
	protected.Post("/drugs/:id/adjust-stock", middleware.RequirePrivilege("drug:adjust_stock"), invHandler.AdjustStock)

	// Sales & returns
	protected.Get("/sales", middleware.RequirePrivilege("sale:view"), salesHandler.GetSales)
	protected.Get("/sales/:id", middleware.RequirePrivilege("sale:view"), salesHandler.GetSale)
	protected.Post("/sales", middleware.RequirePrivilege("sale:create"), salesHandler.CompleteSale)
	protected.Get("/sales/:id/returns", middleware.RequirePrivilege("sale:view"), salesHandler.GetSaleReturns)
	protected.Get("/returns", middleware.RequirePrivilege("sale:view"), salesHandler.GetReturns)
	protected.Post("/returns", middleware.RequirePrivilege("return:create"), salesHandler.CreateReturn)

	// Purchasing
	protected.Get("/purchases", middleware.RequirePrivilege("purchase:view"), purchaseHandler.GetPurchases)
	protected.Get("/purchases/:id", middleware.RequirePrivilege("purchase:view"), purchaseHandler.GetPurchase)
	protected.Post("/purchases", middleware.RequirePrivilege("purchase:create"), purchaseHandler.CreatePurchase)
	protected.Post("/purchases/:id/approve", middleware.RequirePrivilege("purchase:approve"), purchaseHandler.ApprovePurchase)
	protected.Post("/purchases/:id/reject", middleware.RequirePrivilege("purchase:approve"), purchaseHandler.RejectPurchase)

	// Suppliers
	protected.Get("/suppliers", middleware.RequirePrivilege("supplier:view"), supplierHandler.GetSuppliers)
	protected.Get("/suppliers/:id", middleware.RequirePrivilege("supplier:view"), supplierHandler.GetSupplier)
	protected.Post("/suppliers", middleware.RequirePrivilege("supplier:manage"), supplierHandler.CreateSupplier)
	protected.Put("/suppliers/:id", middleware.RequirePrivilege("supplier:manage"), supplierHandler.UpdateSupplier)
	protected.Delete("/suppliers/:id", middleware.RequirePrivilege("supplier:manage"), supplierHandler.DeleteSupplier)

	// Customers
	protected.Get("/customers", middleware.RequirePrivilege("customer:view"), customerHandler.GetCustomers)
	protected.Get("/customers/:id", middleware.RequirePrivilege("customer:view"), customerHandler.GetCustomer)
	protected.Post("/customers", middleware.RequirePrivilege("customer:manage"), customerHandler.CreateCustomer)
	protected.Put("/customers/:id", middleware.RequirePrivilege("customer:manage"), customerHandler.UpdateCustomer)
	protected.Delete("/customers/:id", middleware.RequirePrivilege("customer:manage"), customerHandler.DeleteCustomer)

	// Register shifts
	protected.Get("/shifts", middleware.RequirePrivilege("shift:view"), shiftHandler.GetShifts)
	protected.Get("/shifts/current", middleware.RequirePrivilege("shift:view"), shiftHandler.GetCurrentShift)
	protected.Get("/shifts/:id", middleware.RequirePrivilege("shift:view"), shiftHandler.GetShift)
	protected.Post("/shifts/open", middleware.RequirePrivilege("shift:open"), shiftHandler.OpenShift)
	protected.Post("/shifts/close", middleware.RequirePrivilege("shift:close"), shiftHandler.CloseShift)

	// Reports
	// Cashiers without the report privilege still see today's numbers.
	protected.Get("/reports/dashboard", middleware.RequireAnyPrivilege("report:view", "sale:view"), reportHandler.GetDashboardStats)
	protected.Get("/reports/sales-movement", middleware.RequirePrivilege("report:view"), reportHandler.GetSalesMovement)

	// Drug interaction assistant
	protected.Post("/assistant/drug-interaction", middleware.RequirePrivilege("assistant:use"), assistantHandler.AnalyzeDrugInteraction)

	// User Management Routes
	protected.Get("/users", userHandler.GetUsers)
	protected.Get("/users/:id", userHandler.GetUser)
	protected.Post("/users", middleware.RequirePrivilege("user:create"), userHandler.CreateUser)
	protected.Put("/users/:id", middleware.RequirePrivilege("user:update"), userHandler.UpdateUser)
	protected.Delete("/users/:id", middleware.RequirePrivilege("user:delete"), userHandler.DeleteUser)
	protected.Put("/users/:id/privileges", middleware.RequirePrivilege("user:update_privilege"), userHandler.UpdateUserPrivileges)

	// Role Routes
	protected.Get("/roles", roleHandler.GetRoles)

	// Privileges Route (list all available privileges)
	protected.Get("/privileges", func(c *fiber.Ctx) error {
		privileges, err := privilegeRepo.FindAll()
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch privileges"})
		}
		return c.JSON(privileges)
	})

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful Shutdown
	go func() {
		port := os.Getenv("PORT")
		if port == "" {
			port = "3000"
		}
		if err := app.Listen(":" + port); err != nil {
			log.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

// buildReportCache connects to Redis when REDIS_ADDR is set; otherwise report
// endpoints hit the database directly.
func buildReportCache() cache.ReportCache {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		log.Println("REDIS_ADDR not set, report caching disabled")
		return cache.NoopReportCache{}
	}
	return cache.NewRedisReportCache(addr, os.Getenv("REDIS_PASSWORD"), 0)
}

// seedPrivilegesRolesAndAdmin creates default privileges, roles, and admin user if they don't exist
func seedPrivilegesRolesAndAdmin(db *gorm.DB) {
	privilegeRepo := repository.NewPrivilegeRepo(db)
	userRepo := repository.NewUserRepo(db)
	roleRepo := repository.NewRoleRepo(db)

	// 1. Seed privileges first
	if err := privilegeRepo.SeedDefaults(); err != nil {
		log.Printf("Warning: Failed to seed privileges: %v", err)
	}

	// 2. Seed roles
	if err := roleRepo.SeedDefaults(); err != nil {
		log.Printf("Warning: Failed to seed roles: %v", err)
	}

	// 3. Assign privileges to roles
	allPrivileges, _ := privilegeRepo.FindAll()

	// MASTER_ADMIN gets ALL privileges
	masterRole, err := roleRepo.FindByCode(model.RoleMasterAdmin)
	if err == nil && len(masterRole.Privileges) == 0 {
		db.Model(&masterRole).Association("Privileges").Replace(allPrivileges)
		log.Println("✅ MASTER_ADMIN role assigned all privileges")
	}

	// ADMIN gets everything except user management
	adminRole, err := roleRepo.FindByCode(model.RoleAdmin)
	if err == nil && len(adminRole.Privileges) == 0 {
		adminPrivileges := []model.Privilege{}
		for _, p := range allPrivileges {
			if strings.HasPrefix(p.Code, "user:") {
				continue
			}
			adminPrivileges = append(adminPrivileges, p)
		}
		db.Model(&adminRole).Association("Privileges").Replace(adminPrivileges)
		log.Println("✅ ADMIN role assigned limited privileges")
	}

	// PHARMACIST runs the counter: catalog, sales, purchasing, assistant.
	pharmacistRole, err := roleRepo.FindByCode(model.RolePharmacist)
	if err == nil && len(pharmacistRole.Privileges) == 0 {
		codes := map[string]bool{
			"drug:view": true, "drug:create": true, "drug:update": true, "drug:adjust_stock": true,
			"sale:view": true, "sale:create": true, "return:create": true,
			"purchase:view": true, "purchase:create": true,
			"supplier:view": true, "customer:view": true, "customer:manage": true,
			"shift:view": true, "shift:open": true, "shift:close": true,
			"report:view": true, "assistant:use": true,
		}
		db.Model(&pharmacistRole).Association("Privileges").Replace(filterPrivileges(allPrivileges, codes))
		log.Println("✅ PHARMACIST role assigned privileges")
	}

	// CASHIER only sells, returns, and works the register.
	cashierRole, err := roleRepo.FindByCode(model.RoleCashier)
	if err == nil && len(cashierRole.Privileges) == 0 {
		codes := map[string]bool{
			"drug:view": true,
			"sale:view": true, "sale:create": true, "return:create": true,
			"customer:view": true,
			"shift:view":    true, "shift:open": true, "shift:close": true,
		}
		db.Model(&cashierRole).Association("Privileges").Replace(filterPrivileges(allPrivileges, codes))
		log.Println("✅ CASHIER role assigned privileges")
	}

	// 4. Create default admin user with MASTER_ADMIN role
	_, err = userRepo.FindByEmail("admin@example.com")
	if err != nil {
		masterRole, _ := roleRepo.FindByCode(model.RoleMasterAdmin)

		admin := &model.User{
			Email:       "admin@example.com",
			FullName:    "Master Administrator",
			PhoneNumber: "",
			RoleID:      &masterRole.ID,
			IsActive:    true,
			Privileges:  masterRole.Privileges,
		}
		admin.CreatedBy = "system"
		admin.UpdatedBy = "system"

		if err := admin.SetPassword("admin123"); err != nil {
			log.Printf("Warning: Failed to hash admin password: %v", err)
			return
		}

		if err := userRepo.Create(admin); err != nil {
			log.Printf("Warning: Failed to create admin user: %v", err)
		} else {
			log.Println("✅ Admin user created: admin@example.com / admin123 (MASTER_ADMIN)")
		}
	}
}

func filterPrivileges(all []model.Privilege, codes map[string]bool) []model.Privilege {
	out := make([]model.Privilege, 0, len(codes))
	for _, p := range all {
		if codes[p.Code] {
			out = append(out, p)
		}
	}
	return out
}
