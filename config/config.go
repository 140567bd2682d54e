package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/alejandrodnm/flipsignal/internal/domain"
)

// Config es la configuración completa del scanner.
type Config struct {
	Scanner ScannerConfig `yaml:"scanner"`
	Pricing PricingConfig `yaml:"pricing"`
	API     APIConfig     `yaml:"api"`
	Storage StorageConfig `yaml:"storage"`
	Offers  OffersConfig  `yaml:"offers"`
	Log     LogConfig     `yaml:"log"`
}

// ScannerConfig controla el comportamiento del signal engine.
type ScannerConfig struct {
	IntervalSeconds    int     `yaml:"interval_seconds"`
	TimeHorizonMinutes int     `yaml:"time_horizon_minutes"` // 5-480
	RiskTolerance      string  `yaml:"risk_tolerance"`       // low | medium | high
	MinScore           float64 `yaml:"min_score"`
	MaxResults         int     `yaml:"max_results"`
	AnalysisWorkers    int     `yaml:"analysis_workers"` // 0 = NumCPU*2
	CacheSize          int     `yaml:"cache_size"`       // items por caché

	// BuyLimits completa los límites de compra de items que /mapping no trae.
	BuyLimits map[int]int `yaml:"buy_limits"`
}

// PricingConfig controla el plan de precios de cada ciclo.
type PricingConfig struct {
	Capital       int64 `yaml:"capital"` // gp disponibles
	TopN          int   `yaml:"top_n"`   // señales con plan de precios
	SupportOffset int64 `yaml:"support_offset"`
	ResistOffset  int64 `yaml:"resist_offset"`
}

// APIConfig contiene el base URL de la price API.
type APIConfig struct {
	WikiBase  string `yaml:"wiki_base"`
	UserAgent string `yaml:"user_agent"` // la wiki bloquea User-Agents genéricos
}

// StorageConfig controla dónde se persisten los datos.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// OffersConfig apunta al archivo de ofertas abiertas a importar.
type OffersConfig struct {
	File string `yaml:"file"` // vacío = no importar
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	// Los defaults se cargan antes del YAML: una key ausente conserva el
	// default, una key presente (aunque sea 0) lo reemplaza.
	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	setDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

// Validate comprueba los valores que no tienen un default razonable.
func (c *Config) Validate() error {
	if _, err := domain.ParseRiskTolerance(c.Scanner.RiskTolerance); err != nil {
		return fmt.Errorf("scanner.risk_tolerance: %w", err)
	}
	h := c.Scanner.TimeHorizonMinutes
	if h < domain.MinTimeHorizon || h > domain.MaxTimeHorizon {
		return fmt.Errorf("scanner.time_horizon_minutes: %d outside [%d, %d]",
			h, domain.MinTimeHorizon, domain.MaxTimeHorizon)
	}
	if c.Scanner.MinScore < 0 || c.Scanner.MinScore > 100 {
		return fmt.Errorf("scanner.min_score: %.1f outside [0, 100]", c.Scanner.MinScore)
	}
	if c.Pricing.SupportOffset < 0 || c.Pricing.ResistOffset < 0 {
		return fmt.Errorf("pricing: offsets must be >= 0")
	}
	return nil
}

// ScanInterval devuelve el intervalo de escaneo como time.Duration.
func (c *Config) ScanInterval() time.Duration {
	return time.Duration(c.Scanner.IntervalSeconds) * time.Second
}

// ScanConfig construye los parámetros de un scan. Llamar después de Validate.
func (c *Config) ScanConfig() domain.ScanConfig {
	risk, _ := domain.ParseRiskTolerance(c.Scanner.RiskTolerance)
	return domain.ScanConfig{
		TimeHorizonMinutes: c.Scanner.TimeHorizonMinutes,
		RiskTolerance:      risk,
		MinScore:           c.Scanner.MinScore,
		MaxResults:         c.Scanner.MaxResults,
	}
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("WIKI_USER_AGENT"); v != "" {
		cfg.API.UserAgent = v
	}
	if v := os.Getenv("FLIP_CAPITAL"); v != "" {
		capital, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("FLIP_CAPITAL %q: %w", v, err)
		}
		cfg.Pricing.Capital = capital
	}
	return nil
}

// defaultConfig devuelve la configuración usada para las keys ausentes.
func defaultConfig() Config {
	return Config{
		Scanner: ScannerConfig{
			IntervalSeconds:    60,
			TimeHorizonMinutes: domain.DefaultTimeHorizon,
			RiskTolerance:      "medium",
			MinScore:           domain.DefaultMinScore,
			MaxResults:         domain.DefaultMaxResults,
		},
		Pricing: PricingConfig{
			Capital:       10_000_000,
			TopN:          1,
			SupportOffset: 100,
			ResistOffset:  100,
		},
		API:     APIConfig{WikiBase: "https://prices.runescape.wiki/api/v1/osrs"},
		Storage: StorageConfig{DSN: "flipsignal.db"},
		Log:     LogConfig{Level: "info", Format: "text"},
	}
}

// setDefaults corrige valores presentes pero sin sentido (vacíos o <= 0).
// min_score y los offsets admiten 0 y no se tocan.
func setDefaults(cfg *Config) {
	def := defaultConfig()
	if cfg.Scanner.IntervalSeconds <= 0 {
		cfg.Scanner.IntervalSeconds = def.Scanner.IntervalSeconds
	}
	if cfg.Scanner.TimeHorizonMinutes == 0 {
		cfg.Scanner.TimeHorizonMinutes = def.Scanner.TimeHorizonMinutes
	}
	if cfg.Scanner.RiskTolerance == "" {
		cfg.Scanner.RiskTolerance = def.Scanner.RiskTolerance
	}
	if cfg.Scanner.MaxResults <= 0 {
		cfg.Scanner.MaxResults = def.Scanner.MaxResults
	}
	if cfg.Pricing.Capital <= 0 {
		cfg.Pricing.Capital = def.Pricing.Capital
	}
	if cfg.Pricing.TopN <= 0 {
		cfg.Pricing.TopN = def.Pricing.TopN
	}
	if cfg.API.WikiBase == "" {
		cfg.API.WikiBase = def.API.WikiBase
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = def.Storage.DSN
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = def.Log.Format
	}
}
