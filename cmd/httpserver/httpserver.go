// Package httpserver manages server creation and api routing.
package httpserver

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/fintru/wallet-ledger/internal/checkdelivery"
	"github.com/fintru/wallet-ledger/internal/checkrepo"
	"github.com/fintru/wallet-ledger/internal/checkservice"
	"github.com/fintru/wallet-ledger/internal/exchangedelivery"
	"github.com/fintru/wallet-ledger/internal/exchangeservice"
	"github.com/fintru/wallet-ledger/internal/ledgerrepo"
	"github.com/fintru/wallet-ledger/internal/middleware"
	"github.com/fintru/wallet-ledger/internal/ratesource"
	"github.com/fintru/wallet-ledger/internal/transactionrepo"
	"github.com/fintru/wallet-ledger/internal/transferdelivery"
	"github.com/fintru/wallet-ledger/internal/transferservice"
	"github.com/fintru/wallet-ledger/internal/walletdelivery"
	"github.com/fintru/wallet-ledger/internal/walletrepo"
	"github.com/fintru/wallet-ledger/internal/walletservice"
	"github.com/fintru/wallet-ledger/pkg/configpkg"
	"github.com/fintru/wallet-ledger/pkg/currencypkg"
	"github.com/fintru/wallet-ledger/pkg/tokenpkg"
)

// fallbackRates backs the live rate source so conversions keep working when
// the provider is unreachable.
var fallbackRates = map[string]map[string]string{
	"USD": {"EUR": "0.92", "GBP": "0.79", "JPY": "149.50", "AUD": "1.53", "CAD": "1.36", "CHF": "0.88", "CNY": "7.24"},
	"EUR": {"USD": "1.09", "GBP": "0.86", "JPY": "162.80", "AUD": "1.66", "CAD": "1.48", "CHF": "0.96", "CNY": "7.88"},
	"GBP": {"USD": "1.27", "EUR": "1.16", "JPY": "189.20", "AUD": "1.94", "CAD": "1.72", "CHF": "1.11", "CNY": "9.16"},
	"JPY": {"USD": "0.0067", "EUR": "0.0061", "GBP": "0.0053", "AUD": "0.0102", "CAD": "0.0091", "CHF": "0.0059", "CNY": "0.0484"},
	"AUD": {"USD": "0.65", "EUR": "0.60", "GBP": "0.52", "JPY": "97.70", "CAD": "0.89", "CHF": "0.57", "CNY": "4.73"},
	"CAD": {"USD": "0.74", "EUR": "0.68", "GBP": "0.58", "JPY": "109.90", "AUD": "1.12", "CHF": "0.65", "CNY": "5.32"},
	"CHF": {"USD": "1.14", "EUR": "1.04", "GBP": "0.90", "JPY": "169.90", "AUD": "1.74", "CAD": "1.55", "CNY": "8.23"},
	"CNY": {"USD": "0.14", "EUR": "0.13", "GBP": "0.11", "JPY": "20.65", "AUD": "0.21", "CAD": "0.19", "CHF": "0.12"},
}

// Server holds db connection, handlers router and configuration.
type Server struct {
	DB     *sql.DB
	Engine *gin.Engine
	Config configpkg.Config
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// New creates Server type with instantiated domains and routes.
func New(conn *sql.DB, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	currencies := currencypkg.NewSet(config.SupportedCurrencies)

	walletRepo := walletrepo.NewRepoPGS(conn)
	transactionRepo := transactionrepo.NewRepoPGS(conn)
	checkRepo := checkrepo.NewRepoPGS(conn)
	ledgerRepo := ledgerrepo.NewRepoPGS(conn)

	tokenMaker, err := tokenpkg.NewPasetoMaker(config.TokenSymmetricKey)
	if err != nil {
		return nil, errors.New("cannot create token maker")
	}

	var rates ratesource.Source = ratesource.NewChain(
		ratesource.NewClient(config.ExchangeRateURL, config.RateLookupTimeout),
		ratesource.NewStatic(fallbackRates),
	)

	if config.RedisAddress != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: config.RedisAddress})
		rates = ratesource.NewCache(rates, redisClient, config.RateCacheTTL)
	}

	walletService := walletservice.New(walletRepo, ledgerRepo, transactionRepo, currencies)
	transferService := transferservice.New(ledgerRepo, walletRepo, rates, transactionRepo)
	exchangeService := exchangeservice.New(ledgerRepo, walletRepo, rates, currencies)
	checkService := checkservice.New(checkRepo, ledgerRepo, walletRepo, checkservice.DefaultConfig())

	walletHandler := walletdelivery.NewHandler(walletService)
	transferHandler := transferdelivery.NewHandler(transferService)
	exchangeHandler := exchangedelivery.NewHandler(exchangeService)
	checkHandler := checkdelivery.NewHandler(checkService)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))
	engine.Use(gin.Recovery())

	authRoutes := engine.Group("/").Use(middleware.Auth(tokenMaker))

	authRoutes.POST("/wallets", walletHandler.Create)
	authRoutes.GET("/wallets/:id", walletHandler.Get)
	authRoutes.GET("/wallets", walletHandler.List)
	authRoutes.POST("/wallets/:id/deposit", walletHandler.Deposit)
	authRoutes.POST("/wallets/:id/withdraw", walletHandler.Withdraw)
	authRoutes.GET("/transactions", walletHandler.ListTransactions)

	authRoutes.POST("/transfers", transferHandler.Create)
	authRoutes.POST("/transfers/preview", transferHandler.Preview)
	authRoutes.GET("/transfers", transferHandler.List)

	authRoutes.POST("/exchanges", exchangeHandler.Create)
	authRoutes.GET("/exchanges/rates", exchangeHandler.Rates)

	authRoutes.POST("/checks", checkHandler.Deposit)
	authRoutes.POST("/checks/:id/resolve", checkHandler.Resolve)
	authRoutes.GET("/checks", checkHandler.List)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		err := v.RegisterValidation("currency", currencies.Validator())
		if err != nil {
			return nil, errors.New("cannot register currency validator")
		}
	}

	server := &Server{
		DB:     conn,
		Engine: engine,
		Config: config,
	}

	return server, nil
}
