package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"StockPulse/internal/domain/models"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		SignalTopic  string   `yaml:"signal_topic"`
		AnomalyTopic string   `yaml:"anomaly_topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			Enabled    bool          `yaml:"enabled"`
			Topic      string        `yaml:"topic"`
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			MinBytes   int           `yaml:"min_bytes"`
			MaxBytes   int           `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	MarketData struct {
		BaseURL     string        `yaml:"base_url"`
		APIKey      string        `yaml:"api_key"`
		Timeout     time.Duration `yaml:"timeout"`
		HistoryDays int           `yaml:"history_days"`
		RateLimit   struct {
			RequestsPerMinute int `yaml:"requests_per_minute"`
			Burst             int `yaml:"burst"`
		} `yaml:"rate_limit"`
	} `yaml:"marketdata"`
	News struct {
		Timeout       time.Duration `yaml:"timeout"`
		MaxItems      int           `yaml:"max_items"`
		TwitterBearer string        `yaml:"twitter_bearer"`
		RSSSites      []string      `yaml:"rss_sites"`
		CacheTTL      time.Duration `yaml:"cache_ttl"`
	} `yaml:"news"`
	Watchlist struct {
		Instruments []models.Instrument `yaml:"instruments"`
		Concurrency int                 `yaml:"concurrency"`
	} `yaml:"watchlist"`
	Scheduler struct {
		Enabled  bool   `yaml:"enabled"`
		RunAt    string `yaml:"run_at"` // HH:MM, local to Timezone
		Timezone string `yaml:"timezone"`
	} `yaml:"scheduler"`
	Analysis struct {
		AnomalyThreshold float64 `yaml:"anomaly_threshold"`
		MAPeriods        []int   `yaml:"ma_periods"`
		RSIPeriod        int     `yaml:"rsi_period"`
		MACDFast         int     `yaml:"macd_fast"`
		MACDSlow         int     `yaml:"macd_slow"`
		MACDSignal       int     `yaml:"macd_signal"`
		BollPeriod       int     `yaml:"boll_period"`
		BollStd          float64 `yaml:"boll_std"`
		ADXPeriod        int     `yaml:"adx_period"`
		ROCPeriod        int     `yaml:"roc_period"`
		MomPeriod        int     `yaml:"mom_period"`
		VolMAPeriods     []int   `yaml:"vol_ma_periods"`
		VROCPeriod       int     `yaml:"vroc_period"`
		MFIPeriod        int     `yaml:"mfi_period"`
	} `yaml:"analysis"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
// Secrets are expected from the environment in deployed setups.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("MARKETDATA_API_KEY"); v != "" {
		c.MarketData.APIKey = v
	}
	if v := os.Getenv("MARKETDATA_BASE_URL"); v != "" {
		c.MarketData.BaseURL = v
	}
	if v := os.Getenv("TWITTER_BEARER_TOKEN"); v != "" {
		c.News.TwitterBearer = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
		c.Redis.Enabled = true
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if len(c.Watchlist.Instruments) == 0 {
		return fmt.Errorf("watchlist.instruments cannot be empty")
	}
	for i, inst := range c.Watchlist.Instruments {
		if inst.Symbol == "" {
			return fmt.Errorf("watchlist.instruments[%d].symbol is required", i)
		}
		switch inst.Market {
		case models.MarketCN, models.MarketUS, models.MarketHK:
		default:
			return fmt.Errorf("watchlist.instruments[%d].market must be one of A, US, HK, got '%s'", i, inst.Market)
		}
	}
	if c.MarketData.BaseURL == "" {
		return fmt.Errorf("marketdata.base_url is required")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Scheduler.Enabled {
		if _, err := time.Parse("15:04", c.Scheduler.RunAt); err != nil {
			return fmt.Errorf("scheduler.run_at must be HH:MM, got '%s'", c.Scheduler.RunAt)
		}
	}
	return nil
}
