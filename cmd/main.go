package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alicebob/miniredis/v2"

	_ "stockmaster/docs" // Documentação Swagger

	// Infraestrutura e utilitários
	"stockmaster/config"
	"stockmaster/internal/pkg/cache"
	"stockmaster/internal/pkg/database"
	"stockmaster/internal/pkg/logger"
	"stockmaster/internal/pkg/metrics"
	"stockmaster/internal/pkg/otp"
	"stockmaster/internal/pkg/token"

	// Camadas para Injeção de Dependências
	"stockmaster/internal/api/operation"
	"stockmaster/internal/api/product"
	"stockmaster/internal/api/report"
	"stockmaster/internal/api/router"
	"stockmaster/internal/api/stock"
	"stockmaster/internal/api/user"
	"stockmaster/internal/api/warehouse"
	"stockmaster/internal/repository/memstore"
	"stockmaster/internal/repository/operationrepo"
	"stockmaster/internal/repository/productrepo"
	"stockmaster/internal/repository/stockrepo"
	"stockmaster/internal/repository/userrepo"
	"stockmaster/internal/repository/warehouserepo"
	"stockmaster/internal/service/operationservice"
	"stockmaster/internal/service/productservice"
	"stockmaster/internal/service/reportservice"
	"stockmaster/internal/service/stockservice"
	"stockmaster/internal/service/userservice"
	"stockmaster/internal/service/warehouseservice"
)

// stores reúne as implementações de persistência escolhidas pelo STORE_DRIVER.
type stores struct {
	ledger     stockservice.LedgerStore
	catalog    stockservice.CatalogReader
	operations interface {
		operationservice.OperationRepository
		reportservice.DraftCounter
	}
	totals     reportservice.StockTotals
	snapshots  reportservice.SnapshotReader
	products   productservice.ProductRepository
	warehouses warehouseservice.WarehouseRepository
	users      userservice.UserRepository
	close      func()
}

// pgCatalog junta os repositórios de produto e localização em um único CatalogReader.
type pgCatalog struct {
	*productrepo.ProductRepository
	*warehouserepo.WarehouseRepository
}

func main() {
	log.Println("⚡ Inicializando serviço StockMaster...")

	// 1. Configuração (o .env é lido, se existir)
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Configuração inválida: %v", err)
	}
	appLog := logger.NewLogger(cfg.LogLevel, cfg.Environment)
	appLog.Info("Configurações carregadas.", map[string]interface{}{"env": cfg.Environment, "store_driver": cfg.StoreDriver})

	m := metrics.New()

	// 2. Cache (Redis)
	cacheClient, closeCache := connectCache(cfg, appLog)
	defer closeCache()

	// 3. Persistência
	st := buildStores(cfg, cacheClient, m, appLog)
	defer st.close()

	// 4. INJEÇÃO DE DEPENDÊNCIAS: Repository -> Service -> Handler
	stockSvc := stockservice.NewService(st.ledger, st.catalog, appLog, stockservice.WithMetrics(m))
	operationSvc := operationservice.NewService(st.operations, st.catalog, appLog)
	reportSvc := reportservice.NewService(st.totals, st.operations, appLog, reportservice.WithSnapshots(st.snapshots))
	productSvc := productservice.NewService(st.products, stockSvc, appLog)
	warehouseSvc := warehouseservice.NewService(st.warehouses, appLog)

	tokenSvc := token.NewService(cfg.JWTSecretKey, cfg.TokenExpiry)
	userSvc := userservice.NewService(st.users, tokenSvc, otp.NewStore(cacheClient, cfg.OTPTTL), appLog)
	userSvc.ExposeOTP = !cfg.IsProduction()
	appLog.Debug("Serviços inicializados.", nil)

	// 5. Roteador e servidor
	r := router.NewRouter(router.Params{
		Logger:       appLog,
		Metrics:      m,
		TokenService: tokenSvc,
		RateLimit: router.RateLimit{
			Cache:       cacheClient,
			MaxRequests: cfg.RateLimitMaxRequests,
			Period:      cfg.RateLimitPeriod,
		},
		OperationHandler: operation.NewHandler(operationSvc, appLog),
		StockHandler:     stock.NewHandler(stockSvc, appLog),
		ReportHandler:    report.NewHandler(reportSvc, appLog),
		ProductHandler:   product.NewHandler(productSvc, appLog),
		WarehouseHandler: warehouse.NewHandler(warehouseSvc, appLog),
		UserHandler:      user.NewHandler(userSvc, appLog),
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 6. Execução e Graceful Shutdown
	go func() {
		appLog.Info("Servidor StockMaster ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal("Servidor falhou.", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	appLog.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLog.Error("Desligamento do servidor forçado.", err)
	}

	appLog.Info("Servidor encerrado com sucesso.", nil)
}

// connectCache conecta ao Redis. Com STORE_DRIVER=memory e Redis indisponível,
// sobe um Redis embutido (miniredis) para OTP e rate limiting.
func connectCache(cfg *config.Config, appLog logger.Logger) (cache.Client, func()) {
	client, err := cache.NewRedisClient(cfg.RedisAddr)
	if err == nil {
		appLog.Info("Conexão Redis estabelecida.", map[string]interface{}{"addr": cfg.RedisAddr})
		return client, func() { _ = client.Close() }
	}
	if cfg.StoreDriver != config.DriverMemory {
		appLog.Fatal("Falha ao conectar ao Redis.", err)
	}

	appLog.Warn("Redis indisponível. Usando Redis embutido em memória.", map[string]interface{}{"addr": cfg.RedisAddr, "error": err.Error()})
	mr, err := miniredis.Run()
	if err != nil {
		appLog.Fatal("Falha ao iniciar o Redis embutido.", err)
	}
	client, err = cache.NewRedisClient(mr.Addr())
	if err != nil {
		mr.Close()
		appLog.Fatal("Falha ao conectar ao Redis embutido.", err)
	}
	return client, func() {
		_ = client.Close()
		mr.Close()
	}
}

// buildStores monta a persistência conforme o driver configurado.
func buildStores(cfg *config.Config, cacheClient cache.Client, m *metrics.Metrics, appLog logger.Logger) stores {
	if cfg.StoreDriver == config.DriverMemory {
		mem := memstore.New()
		mem.SeedDefaults()
		appLog.Warn("Usando armazenamento em memória. Os dados se perdem ao encerrar.", nil)
		return stores{
			ledger:     mem,
			catalog:    mem,
			operations: mem,
			totals:     mem,
			snapshots:  mem,
			products:   mem,
			warehouses: mem,
			users:      mem,
			close:      func() {},
		}
	}

	db, err := database.NewPostgresDB(cfg.DatabaseURL, appLog)
	if err != nil {
		appLog.Fatal("Falha ao conectar ao banco de dados.", err)
	}
	appLog.Info("Conexão PostgreSQL estabelecida.", nil)

	if cfg.AutoMigrate {
		migrateAndSeed(db, appLog)
	}

	stockRepo := stockrepo.NewStockRepository(db, cfg.DBTimeout, cfg.DBMaxRetries, appLog)
	stockRepo.OnRetry = func(int, error) { m.IncRetry() }
	productRepo := productrepo.NewProductRepository(db, cacheClient, cfg.DBTimeout, cfg.CacheTTL, appLog)
	warehouseRepo := warehouserepo.NewWarehouseRepository(db, cacheClient, cfg.DBTimeout, cfg.CacheTTL, appLog)

	return stores{
		ledger:     stockRepo,
		catalog:    pgCatalog{productRepo, warehouseRepo},
		operations: operationrepo.NewOperationRepository(db, cfg.DBTimeout, appLog),
		totals:     stockRepo,
		snapshots:  stockRepo,
		products:   productRepo,
		warehouses: warehouseRepo,
		users:      userrepo.NewUserRepository(db, cfg.DBTimeout, appLog),
		close:      func() { _ = db.Close() },
	}
}

func migrateAndSeed(db *sql.DB, appLog logger.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := database.Migrate(ctx, db, "up"); err != nil {
		appLog.Fatal("Falha ao aplicar migrações.", err)
	}
	if err := database.Seed(ctx, db); err != nil {
		appLog.Fatal("Falha ao inserir dados padrão.", err)
	}
	appLog.Info("Migrações aplicadas e dados padrão garantidos.", nil)
}
