package config

import (
	"errors"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Drivers de armazenamento suportados pelo motor de estoque.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config armazena todas as configurações do StockMaster.
type Config struct {
	// Geral
	Port        string `envconfig:"PORT" default:"8080"`
	Environment string `envconfig:"ENV" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// Armazenamento
	StoreDriver  string        `envconfig:"STORE_DRIVER" default:"postgres"`
	DatabaseURL  string        `envconfig:"DATABASE_URL"`
	DBTimeout    time.Duration `envconfig:"DB_TIMEOUT" default:"5s"`
	DBMaxRetries int           `envconfig:"DB_MAX_RETRIES" default:"3"` // Repetições em conflito de serialização/deadlock
	AutoMigrate  bool          `envconfig:"AUTO_MIGRATE" default:"false"`

	// Cache (Redis)
	RedisAddr string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	CacheTTL  time.Duration `envconfig:"CACHE_TTL" default:"5m"`

	// Segurança (JWT / OTP)
	JWTSecretKey string        `envconfig:"JWT_SECRET_KEY" required:"true"`
	TokenExpiry  time.Duration `envconfig:"JWT_EXPIRY" default:"1h"`
	OTPTTL       time.Duration `envconfig:"OTP_TTL" default:"10m"`

	// Rate Limiting
	RateLimitMaxRequests int           `envconfig:"RATE_LIMIT_MAX_REQUESTS" default:"100"`
	RateLimitPeriod      time.Duration `envconfig:"RATE_LIMIT_PERIOD" default:"1m"`
}

// LoadConfig carrega o arquivo .env (se existir) e lê as variáveis de ambiente.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// As variáveis essenciais podem estar no ambiente do sistema (ex: Docker).
		log.Println("⚠️ Aviso: Arquivo .env não encontrado. Carregando configs apenas do ambiente do sistema.")
	}
	return Process()
}

// Process lê a configuração apenas do ambiente, sem tocar em arquivos.
func Process() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate verifica combinações que as tags não expressam.
func (c *Config) Validate() error {
	if c.JWTSecretKey == "" {
		return errors.New("JWT_SECRET_KEY deve ser definida")
	}
	switch c.StoreDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL deve ser definida quando STORE_DRIVER=postgres")
		}
	case DriverMemory:
	default:
		return errors.New("STORE_DRIVER deve ser 'postgres' ou 'memory'")
	}
	if c.DBMaxRetries < 0 {
		return errors.New("DB_MAX_RETRIES não pode ser negativo")
	}
	return nil
}

// IsProduction informa se a aplicação roda em produção.
func (c *Config) IsProduction() bool {
	return c != nil && c.Environment == "production"
}
