package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/agrimarket-api/internal/application/auth"
	"github.com/jhoicas/agrimarket-api/internal/application/cart"
	"github.com/jhoicas/agrimarket-api/internal/application/catalog"
	"github.com/jhoicas/agrimarket-api/internal/application/checkout"
	"github.com/jhoicas/agrimarket-api/internal/application/messaging"
	"github.com/jhoicas/agrimarket-api/internal/application/order"
	"github.com/jhoicas/agrimarket-api/internal/application/profile"
	"github.com/jhoicas/agrimarket-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC     *auth.AuthUseCase
	ProfileUC  *profile.ProfileUseCase
	ProductUC  *catalog.ProductUseCase
	CartUC     *cart.CartUseCase
	CheckoutUC *checkout.CheckoutUseCase
	OrderUC    *order.OrderUseCase
	MessageUC  *messaging.MessageUseCase
	JWTSecret  string

	// AuthLimiter se aplica a /api/auth (nil = sin límite).
	AuthLimiter fiber.Handler
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	authRequired := AuthMiddleware(deps.JWTSecret)
	buyerOnly := RequireRole(entity.RoleBuyer)
	sellerOnly := RequireRole(entity.RoleSeller)

	// Auth (público)
	authGroup := api.Group("/auth")
	if deps.AuthLimiter != nil {
		authGroup.Use(deps.AuthLimiter)
	}
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Catálogo (público)
	catalogHandler := NewCatalogHandler(deps.ProductUC)
	api.Get("/products", catalogHandler.Search)
	api.Get("/products/:id", catalogHandler.Get)

	// Perfil (cualquier usuario autenticado)
	profileHandler := NewProfileHandler(deps.ProfileUC)
	profileGroup := api.Group("/profile", authRequired)
	profileGroup.Get("/", profileHandler.Get)
	profileGroup.Put("/", profileHandler.Update)

	// Carrito y checkout (compradores)
	cartHandler := NewCartHandler(deps.CartUC, deps.CheckoutUC)
	cartGroup := api.Group("/cart", authRequired, buyerOnly)
	cartGroup.Get("/", cartHandler.List)
	cartGroup.Post("/items", cartHandler.Add)
	cartGroup.Patch("/items/:id", cartHandler.UpdateQuantity)
	cartGroup.Delete("/items/:id", cartHandler.Remove)
	cartGroup.Post("/checkout", cartHandler.Checkout)

	// Pedidos: historial del comprador; detalle y comprobante para comprador o vendedor
	orderHandler := NewOrderHandler(deps.OrderUC)
	orders := api.Group("/orders", authRequired)
	orders.Get("/", buyerOnly, orderHandler.ListMine)
	orders.Get("/:id", orderHandler.Get)
	orders.Get("/:id/receipt", orderHandler.Receipt)

	// Mensajes directos (cualquier usuario autenticado)
	messageHandler := NewMessageHandler(deps.MessageUC)
	messages := api.Group("/messages", authRequired)
	messages.Get("/:user_id", messageHandler.Conversation)
	messages.Post("/:user_id", messageHandler.Send)

	// Vendedor; el administrador solo puede eliminar productos
	seller := api.Group("/seller", authRequired)
	seller.Post("/products", sellerOnly, catalogHandler.Create)
	seller.Get("/products", sellerOnly, catalogHandler.ListMine)
	seller.Put("/products/:id", sellerOnly, catalogHandler.Update)
	seller.Delete("/products/:id", RequireRole(entity.RoleSeller, entity.RoleAdmin), catalogHandler.Delete)
	seller.Get("/orders", sellerOnly, orderHandler.ListSold)
	seller.Patch("/orders/:id/status", sellerOnly, orderHandler.UpdateStatus)
}
