package rest

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/marketplace/internal/auth"
	"github.com/vladislavdragonenkov/marketplace/internal/domain"
	"github.com/vladislavdragonenkov/marketplace/internal/service/catalog"
	"github.com/vladislavdragonenkov/marketplace/internal/service/orders"
)

// Server собирает REST API маркетплейса поверх fiber.
type Server struct {
	app         *fiber.App
	orders      *orders.Service
	catalog     *catalog.Service
	accounts    domain.AccountRepository
	idempotency domain.IdempotencyRepository
	tokens      *auth.TokenManager
	logger      *log.Entry
}

// NewServer создаёт REST-сервер и регистрирует маршруты.
func NewServer(
	orderService *orders.Service,
	catalogService *catalog.Service,
	accounts domain.AccountRepository,
	idempotency domain.IdempotencyRepository,
	tokens *auth.TokenManager,
) *Server {
	s := &Server{
		orders:      orderService,
		catalog:     catalogService,
		accounts:    accounts,
		idempotency: idempotency,
		tokens:      tokens,
		logger:      log.WithField("component", "rest-server"),
	}

	app := fiber.New(fiber.Config{
		AppName:      "Marketplace API v1.0",
		ErrorHandler: s.errorHandler,
	})
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} - ${latency}\n",
	}))

	s.app = app
	s.registerRoutes()
	return s
}

// App возвращает fiber-приложение (для Listen и тестов).
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen запускает HTTP-сервер на указанном адресе.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown останавливает приём новых соединений и дожидается активных.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) registerRoutes() {
	api := s.app.Group("/api/v1", s.authenticate)

	ordersGroup := api.Group("/orders")
	ordersGroup.Post("/", s.placeOrder)
	ordersGroup.Get("/", requireRole(domain.RoleCustomer), s.listCustomerOrders)
	ordersGroup.Get("/:id", s.getOrder)
	ordersGroup.Get("/:id/history", s.getOrderHistory)
	ordersGroup.Put("/:id/status", s.updateOrderStatus)

	api.Get("/seller/orders", requireRole(domain.RoleSeller), s.listSellerOrders)

	api.Put("/products", s.upsertProduct)
	api.Get("/products/:id", s.getProduct)

	s.app.Use(func(c *fiber.Ctx) error {
		return errorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "route not found", nil)
	})
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	s.logger.WithError(err).WithFields(log.Fields{
		"method": c.Method(),
		"path":   c.Path(),
	}).Error("request failed")

	return errorResponse(c, code, "INTERNAL_SERVER_ERROR", message, nil)
}
