package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration accepts either a Go duration string ("30s") or a bare number of
// seconds in the yaml file.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if v, err := time.ParseDuration(value.Value); err == nil {
		*d = Duration(v)
		return nil
	}
	if n, err := strconv.Atoi(value.Value); err == nil {
		*d = Duration(time.Duration(n) * time.Second)
		return nil
	}
	return fmt.Errorf("config: invalid duration %q", value.Value)
}

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Auth struct {
		// APIKeys maps tenant id to its API key.
		APIKeys map[string]string `yaml:"apiKeys"`
	} `yaml:"auth"`

	Database struct {
		Driver   string `yaml:"driver"` // mysql | postgres
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslMode"` // postgres only
	} `yaml:"database"`

	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	Oracle struct {
		APIKey         string   `yaml:"apiKey"`
		Model          string   `yaml:"model"`
		EmbeddingModel string   `yaml:"embeddingModel"`
		MaxConcurrency int      `yaml:"maxConcurrency"`
		Timeout        Duration `yaml:"timeout"`
	} `yaml:"oracle"`

	Similarity struct {
		IndexPath     string   `yaml:"indexPath"`
		EmbeddingDims int      `yaml:"embeddingDims"`
		TopK          int      `yaml:"topK"`
		Timeout       Duration `yaml:"timeout"`
	} `yaml:"similarity"`
}

// Load reads the yaml config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "mysql"
	}
	if c.Oracle.Model == "" {
		c.Oracle.Model = "gpt-4o-mini"
	}
	if c.Oracle.MaxConcurrency <= 0 {
		c.Oracle.MaxConcurrency = 4
	}
	if c.Oracle.Timeout <= 0 {
		c.Oracle.Timeout = Duration(60 * time.Second)
	}
	if c.Similarity.TopK <= 0 {
		c.Similarity.TopK = 5
	}
	if c.Similarity.Timeout <= 0 {
		c.Similarity.Timeout = Duration(10 * time.Second)
	}
	if c.Similarity.EmbeddingDims <= 0 {
		c.Similarity.EmbeddingDims = 1536
	}
}

// Validate rejects configs the server cannot start with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "mysql", "postgres":
	default:
		return fmt.Errorf("config: unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.Host == "" {
		return fmt.Errorf("config: database.host is required")
	}
	if c.Oracle.APIKey == "" {
		return fmt.Errorf("config: oracle.apiKey is required")
	}
	if c.Minio.Endpoint == "" {
		return fmt.Errorf("config: minio.endpoint is required")
	}
	return nil
}

// Helper to build MySQL DSN
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// Helper to build Postgres DSN
func (c *Config) PostgresDSN() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		sslMode,
	)
}
