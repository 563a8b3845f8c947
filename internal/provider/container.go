package provider

import (
	"time"

	"github.com/fixmore/mall/internal/authz"
	"github.com/fixmore/mall/internal/cache"
	"github.com/fixmore/mall/internal/config"
	"github.com/fixmore/mall/internal/logger"
	"github.com/fixmore/mall/internal/models"
	"github.com/fixmore/mall/internal/payment/mpesa"
	"github.com/fixmore/mall/internal/queue"
	"github.com/fixmore/mall/internal/repository"
	"github.com/fixmore/mall/internal/service"
)

// Container wires repositories and services for the HTTP and worker
// entrypoints.
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	MpesaClient *mpesa.Client

	// Repositories
	UserRepo         repository.UserRepository
	AddressRepo      repository.AddressRepository
	CategoryRepo     repository.CategoryRepository
	ProductRepo      repository.ProductRepository
	ReviewRepo       repository.ReviewRepository
	CartRepo         repository.CartRepository
	OrderRepo        repository.OrderRepository
	PaymentRepo      repository.PaymentRepository
	InventoryLogRepo repository.InventoryLogRepository
	CouponRepo       repository.CouponRepository
	CouponUsageRepo  repository.CouponUsageRepository
	ShipmentRepo     repository.ShipmentRepository
	SettingRepo      repository.SettingRepository
	DashboardRepo    repository.DashboardRepository

	// Services
	AuthzService     *authz.Service
	AuthService      *service.AuthService
	EmailService     *service.EmailService
	CaptchaService   *service.CaptchaService
	CatalogCache     *service.CatalogCache
	ProductService   *service.ProductService
	CategoryService  *service.CategoryService
	ReviewService    *service.ReviewService
	SettingService   *service.SettingService
	CartService      *service.CartService
	AddressService   *service.AddressService
	CouponService    *service.CouponService
	OrderService     *service.OrderService
	PaymentService   *service.PaymentService
	InventoryService *service.InventoryService
	UserAdminService *service.UserAdminService
	DashboardService *service.DashboardService
}

// NewContainer initializes the dependency container.
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	c.initMpesaClient()
	c.initRepositories()
	c.initServices()

	return c
}

func (c *Container) initMpesaClient() {
	if !c.Config.Mpesa.Enabled {
		return
	}
	client, err := mpesa.NewClient(mpesa.Config{
		Environment:    c.Config.Mpesa.Environment,
		BaseURL:        c.Config.Mpesa.BaseURL,
		ConsumerKey:    c.Config.Mpesa.ConsumerKey,
		ConsumerSecret: c.Config.Mpesa.ConsumerSecret,
		Shortcode:      c.Config.Mpesa.Shortcode,
		Passkey:        c.Config.Mpesa.Passkey,
		CallbackURL:    c.Config.Mpesa.CallbackURL,
		Timeout:        time.Duration(c.Config.Mpesa.TimeoutMS) * time.Millisecond,
	})
	if err != nil {
		logger.Errorw("provider_init_mpesa_client_failed", "error", err)
		return
	}
	c.MpesaClient = client
}

func (c *Container) initRepositories() {
	db := models.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.AddressRepo = repository.NewAddressRepository(db)
	c.CategoryRepo = repository.NewCategoryRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.ReviewRepo = repository.NewReviewRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.PaymentRepo = repository.NewPaymentRepository(db)
	c.InventoryLogRepo = repository.NewInventoryLogRepository(db)
	c.CouponRepo = repository.NewCouponRepository(db)
	c.CouponUsageRepo = repository.NewCouponUsageRepository(db)
	c.ShipmentRepo = repository.NewShipmentRepository(db)
	c.SettingRepo = repository.NewSettingRepository(db)
	c.DashboardRepo = repository.NewDashboardRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.SettingService = service.NewSettingService(c.SettingRepo)
	if err := c.SettingService.SeedDefaults(); err != nil {
		logger.Warnw("provider_seed_shop_settings_failed", "error", err)
	}

	c.CatalogCache = service.NewCatalogCache(5 * time.Minute)
	c.EmailService = service.NewEmailService(&c.Config.Email)
	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)
	c.AuthService = service.NewAuthService(c.Config, c.UserRepo)
	c.ProductService = service.NewProductService(c.ProductRepo, c.ReviewRepo, c.CatalogCache)
	c.CategoryService = service.NewCategoryService(c.CategoryRepo, c.CatalogCache)
	c.ReviewService = service.NewReviewService(c.ReviewRepo, c.OrderRepo, c.ProductRepo, c.CatalogCache)
	c.CartService = service.NewCartService(c.CartRepo, c.ProductRepo)
	c.AddressService = service.NewAddressService(c.AddressRepo)
	c.CouponService = service.NewCouponService(c.CouponRepo, c.CouponUsageRepo)
	c.OrderService = service.NewOrderService(
		c.OrderRepo,
		c.ProductRepo,
		c.CartRepo,
		c.AddressRepo,
		c.InventoryLogRepo,
		c.CouponRepo,
		c.CouponUsageRepo,
		c.ShipmentRepo,
		c.CouponService,
		c.SettingService,
		c.QueueClient,
		c.CatalogCache,
	)
	c.PaymentService = service.NewPaymentService(c.Config, c.OrderRepo, c.PaymentRepo, c.MpesaClient, c.QueueClient)
	c.InventoryService = service.NewInventoryService(c.ProductRepo, c.InventoryLogRepo, c.CatalogCache)
	c.UserAdminService = service.NewUserAdminService(c.UserRepo)
	c.DashboardService = service.NewDashboardService(c.DashboardRepo)
}
