package httpserver

import (
	"context"
	"errors"
	"log"
	"time"

	"storefront/internal/domain"
	orderrepo "storefront/internal/repository/order"
	cartsvc "storefront/internal/service/cart"
	customersvc "storefront/internal/service/customer"
	devicesvc "storefront/internal/service/device"
	ordersvc "storefront/internal/service/order"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

type cartService interface {
	Device(snapshot domain.Cart) (*cartsvc.DeviceBackend, error)
	Account(customerID string) (*cartsvc.AccountBackend, error)
	Add(ctx context.Context, b cartsvc.Backend, productID string, qty int) error
	SetQuantity(ctx context.Context, b cartsvc.Backend, productID string, qty int) error
	Remove(ctx context.Context, b cartsvc.Backend, productID string) error
	Clear(ctx context.Context, b cartsvc.Backend) error
	View(ctx context.Context, b cartsvc.Backend) (*domain.CartView, error)
	Merge(ctx context.Context, customerID string, device *cartsvc.DeviceBackend, token string) (cartsvc.MergeResult, error)
}

type addressService interface {
	List(ctx context.Context, customerID string) ([]domain.Address, error)
	Add(ctx context.Context, customerID string, a domain.Address) (*domain.Address, error)
	Update(ctx context.Context, customerID, id string, patch domain.AddressPatch) (*domain.Address, error)
	Remove(ctx context.Context, customerID, id string) error
	SetDefault(ctx context.Context, customerID, id string) (*domain.Address, error)
}

type orderService interface {
	Create(ctx context.Context, in ordersvc.CreateInput) (*domain.Order, error)
	Get(ctx context.Context, id string) (*domain.Order, error)
	GetForOwner(ctx context.Context, customerID, id string) (*domain.Order, error)
	ListByOwner(ctx context.Context, customerID string) ([]domain.Order, error)
	ListByEmail(ctx context.Context, customerID, email string) ([]domain.Order, error)
	List(ctx context.Context, f orderrepo.ListFilter) (*ordersvc.ListResult, error)
	UpdateStatus(ctx context.Context, id, status string, adminNotes *string) (*domain.Order, error)
}

type deviceService interface {
	Issue(ctx context.Context) (devicesvc.Session, error)
	Lookup(ctx context.Context, token string) (string, error)
	Rotate(ctx context.Context, token string) (devicesvc.Session, error)
}

type customerService interface {
	Register(ctx context.Context, in customersvc.RegisterInput) (*domain.Customer, error)
	Get(ctx context.Context, id string) (*domain.Customer, error)
}

type productService interface {
	Get(ctx context.Context, id string) (*domain.Product, error)
	Restock(ctx context.Context, id string, qty int) (int, error)
}

// Deps holds the services behind the routes.
type Deps struct {
	CartSvc     cartService
	AddressSvc  addressService
	OrderSvc    orderService
	DeviceSvc   deviceService
	CustomerSvc customerService
	ProductSvc  productService

	// AdminKeyHash is the bcrypt hash admin callers must match with X-Admin-Key.
	AdminKeyHash string
	CORSOrigins  []string
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if deps.CartSvc == nil || deps.AddressSvc == nil || deps.OrderSvc == nil || deps.DeviceSvc == nil {
		return nil, errors.New("cart, address, order and device services are required")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.New(corsConfig(deps.CORSOrigins)))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	h := &handlers{deps: deps, logger: logger}

	router.POST("/device/session", h.issueDeviceSession)
	device := router.Group("/device-cart")
	device.POST("/add", h.deviceCartAdd)
	device.POST("/set", h.deviceCartSet)
	device.POST("/remove", h.deviceCartRemove)
	device.POST("/view", h.deviceCartView)

	if deps.CustomerSvc != nil {
		router.POST("/customers", h.registerCustomer)
	}
	if deps.ProductSvc != nil {
		router.GET("/products/:id", h.getProduct)
	}

	authed := router.Group("/", requireCustomer())
	if deps.CustomerSvc != nil {
		authed.GET("/me", h.me)
	}
	authed.GET("/cart", h.getCart)
	authed.DELETE("/cart", h.clearCart)
	authed.POST("/cart/items", h.addCartItem)
	authed.PUT("/cart/items/:productId", h.setCartItem)
	authed.DELETE("/cart/items/:productId", h.removeCartItem)
	authed.POST("/cart/sync", h.syncCart)

	authed.GET("/addresses", h.listAddresses)
	authed.POST("/addresses", h.addAddress)
	authed.PUT("/addresses/:id", h.updateAddress)
	authed.DELETE("/addresses/:id", h.removeAddress)
	authed.PUT("/addresses/:id/default", h.setDefaultAddress)

	authed.POST("/orders", h.createOrder)
	authed.GET("/orders", h.listOrders)
	authed.GET("/orders/by-email/:email", h.listOrdersByEmail)
	authed.GET("/orders/:id", h.getOrder)

	admin := router.Group("/admin", requireAdmin(deps.AdminKeyHash))
	admin.GET("/orders", h.adminListOrders)
	admin.GET("/orders/:id", h.adminGetOrder)
	admin.PUT("/orders/:id/status", h.adminUpdateStatus)
	if deps.ProductSvc != nil {
		admin.POST("/products/:id/restock", h.adminRestock)
	}

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", headerCustomerID, headerDeviceToken, headerAdminKey},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

type handlers struct {
	deps   Deps
	logger *log.Logger
}
