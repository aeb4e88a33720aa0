package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"reflect"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/azaliaz/bookstore/internal/config"
	"github.com/azaliaz/bookstore/internal/domain/models"
	"github.com/azaliaz/bookstore/internal/logger"
	"github.com/azaliaz/bookstore/internal/ratelimit"
)

//go:generate mockgen -source=server.go -destination=./mocks/storage_mock.go -package=mocks

const (
	shutdownTimeout = 10 * time.Second
	limiterTTL      = 10 * time.Minute
)

type Storage interface {
	// users
	SaveUser(ctx context.Context, user models.User) (int64, error)
	UserByEmail(ctx context.Context, email string) (models.User, error)

	// catalog
	SaveBook(ctx context.Context, book models.Book) (int64, error)
	GetBooks(ctx context.Context) ([]models.Book, error)
	GetBook(ctx context.Context, id int64) (models.Book, error)
	UpdateBook(ctx context.Context, book models.Book) error
	DeleteBook(ctx context.Context, id int64) error

	// cart
	AddToCart(ctx context.Context, userID, bookID int64, quantity int) error
	GetCart(ctx context.Context, userID int64) ([]models.CartLine, error)
	RemoveFromCart(ctx context.Context, userID, bookID int64) error
	ClearCart(ctx context.Context, userID int64) error

	// orders
	PlaceOrder(ctx context.Context, userID int64) (int64, error)
	GetOrders(ctx context.Context, userID int64) ([]models.Order, error)
}

type Server struct {
	serv     *http.Server
	valid    *validator.Validate
	limiter  *ratelimit.KeyedRateLimiter
	hashCost int
	proxies  []string
	Storage  Storage
}

func New(cfg config.Config, stor Storage) *Server {
	server := http.Server{
		Addr:              cfg.Addr,
		ReadHeaderTimeout: 10 * time.Second,
	}
	valid := validator.New()
	valid.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})

	rps, burst := cfg.AuthRPS, cfg.AuthBurst
	if rps <= 0 {
		rps = 5
	}
	if burst <= 0 {
		burst = 10
	}
	return &Server{
		serv:     &server,
		valid:    valid,
		limiter:  ratelimit.New(rps, burst, limiterTTL),
		hashCost: cfg.BcryptCost,
		proxies:  cfg.TrustedProxies,
		Storage:  stor,
	}
}

// decimalValue lets `validate` tags such as gte=0 apply to decimal fields.
func decimalValue(v reflect.Value) any {
	if d, ok := v.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}

func (s *Server) Router() *gin.Engine {
	log := logger.Get()
	router := gin.New()
	// ClientIP keys the auth limiter, so forwarded headers count only
	// when they come from a configured proxy.
	if err := router.SetTrustedProxies(s.proxies); err != nil {
		log.Error().Err(err).Msg("invalid trusted proxies; trusting none")
		_ = router.SetTrustedProxies(nil)
	}
	router.Use(gin.Recovery(), requestLogger())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization", requestIDHeader},
		ExposeHeaders:   []string{"Content-Length", requestIDHeader},
		MaxAge:          12 * time.Hour,
	}))
	router.GET("/", func(ctx *gin.Context) { ctx.String(http.StatusOK, "Hello") })

	api := router.Group("/api")
	auth := api.Group("", s.rateLimit())
	{
		auth.POST("/register", s.Register)
		auth.POST("/login", s.Login)
	}
	books := api.Group("/books")
	{
		books.POST("", s.AddBook)
		books.GET("", s.AllBooks)
		books.GET("/:id", s.BookInfo)
		books.PUT("/:id", s.UpdateBook)
		books.DELETE("/:id", s.RemoveBook)
	}
	cart := api.Group("/cart")
	{
		cart.POST("/add", s.AddToCart)
		cart.GET("/:userId", s.CartItems)
		cart.DELETE("/remove", s.RemoveFromCart)
		cart.DELETE("/:userId", s.ClearCart)
	}
	orders := api.Group("/orders")
	{
		orders.POST("/place", s.PlaceOrder)
		orders.GET("/:userId", s.Orders)
	}
	return router
}

// Run serves until ShutdownServer is called. Request contexts inherit the
// values of ctx but not its cancellation, so in-flight calls drain on shutdown.
func (s *Server) Run(ctx context.Context) error {
	log := logger.Get()
	s.serv.Handler = s.Router()
	s.serv.BaseContext = func(net.Listener) context.Context { return context.WithoutCancel(ctx) }

	log.Info().Str("host", s.serv.Addr).Msg("server started")
	if err := s.serv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) ShutdownServer() error {
	s.limiter.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.serv.Shutdown(ctx)
}
