package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port           int           `yaml:"port"`
		MaxUploadBytes int64         `yaml:"maxUploadBytes"`
		RequestTimeout time.Duration `yaml:"requestTimeout"`
	} `yaml:"server"`

	// Database is optional; an empty Driver runs without persistence.
	Database struct {
		Driver   string `yaml:"driver"` // mysql | postgres
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslMode"`
	} `yaml:"database"`

	Minio struct {
		Enabled    bool   `yaml:"enabled"`
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	OCR struct {
		Command  string        `yaml:"command"`
		Language string        `yaml:"language"`
		Timeout  time.Duration `yaml:"timeout"`
	} `yaml:"ocr"`

	LLM struct {
		Provider string `yaml:"provider"` // openai | gemini
		APIKey   string `yaml:"apiKey"`
		Model    string `yaml:"model"`
		BaseURL  string `yaml:"baseURL"`
	} `yaml:"llm"`

	Catalog struct {
		Source   string        `yaml:"source"` // csv | database
		CSVPath  string        `yaml:"csvPath"`
		Encoding string        `yaml:"encoding"`
		Seed     bool          `yaml:"seed"`
		CacheTTL time.Duration `yaml:"cacheTTL"`
	} `yaml:"catalog"`

	RateLimit struct {
		PerMinute int `yaml:"perMinute"`
		Burst     int `yaml:"burst"`
	} `yaml:"rateLimit"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowedOrigins"`
	} `yaml:"cors"`
}

// Default returns a configuration that serves the CSV catalog on :5000
// with local tesseract and no database, object storage or LLM.
func Default() *Config {
	var c Config
	c.Server.Port = 5000
	c.Server.MaxUploadBytes = 10 << 20
	c.Server.RequestTimeout = 2 * time.Minute
	c.Database.Port = 3306
	c.Minio.Region = "us-east-1"
	c.Minio.BucketName = "rxscan"
	c.OCR.Command = "tesseract"
	c.OCR.Language = "spa"
	c.OCR.Timeout = 60 * time.Second
	c.LLM.Provider = "gemini"
	c.Catalog.Source = "csv"
	c.Catalog.CSVPath = "sustancias.csv"
	c.Catalog.Encoding = "latin-1"
	c.Catalog.CacheTTL = 5 * time.Minute
	c.RateLimit.PerMinute = 30
	c.RateLimit.Burst = 5
	c.CORS.AllowedOrigins = []string{"*"}
	return &c
}

// Load reads path over the defaults. A missing file is not an error.
// Environment variables win over the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("PORT"); ok && v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Server.Port = p
	}
	if v, ok := lookup("TESSERACT_CMD"); ok && v != "" {
		c.OCR.Command = v
	}
	switch c.LLM.Provider {
	case "openai":
		if v, ok := lookup("OPENAI_API_KEY"); ok && v != "" {
			c.LLM.APIKey = v
		}
	case "gemini":
		for _, k := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"} {
			if v, ok := lookup(k); ok && v != "" {
				c.LLM.APIKey = v
				break
			}
		}
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "", "mysql", "postgres":
	default:
		return fmt.Errorf("database.driver %q: want mysql or postgres", c.Database.Driver)
	}
	switch c.LLM.Provider {
	case "", "openai", "gemini":
	default:
		return fmt.Errorf("llm.provider %q: want openai or gemini", c.LLM.Provider)
	}
	switch c.Catalog.Source {
	case "csv":
	case "database":
		if c.Database.Driver == "" {
			return errors.New("catalog.source database needs database.driver")
		}
	default:
		return fmt.Errorf("catalog.source %q: want csv or database", c.Catalog.Source)
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port %d", c.Server.Port)
	}
	return nil
}

// PostgresDSN builds a lib/pq connection string.
func (c *Config) PostgresDSN() string {
	ssl := c.Database.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		ssl,
	)
}
