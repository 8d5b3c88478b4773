// Package config centralizes the externally supplied settings: the
// backend listen address, datastore endpoints, and the identity and
// payment-processor credentials. Values come from an optional YAML file
// with environment variables taking precedence.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr          string   `yaml:"addr"`
	Env           string   `yaml:"env"`
	MongoURI      string   `yaml:"mongo_uri"`
	MongoDatabase string   `yaml:"mongo_database"`
	RedisAddr     string   `yaml:"redis_addr"`
	KafkaBrokers  []string `yaml:"kafka_brokers"`
	KafkaLogTopic string   `yaml:"kafka_log_topic"`
	ElasticAddrs  []string `yaml:"elastic_addrs"`
	MetricsAddr   string   `yaml:"metrics_addr"`
	OTLPEndpoint  string   `yaml:"otlp_endpoint"`
	StripeKey     string   `yaml:"stripe_key"`
	JWTSecret     string   `yaml:"jwt_secret"`
	AdminEmail    string   `yaml:"admin_email"`
	AdminPassword string   `yaml:"admin_password"`
}

func Default() Config {
	return Config{
		Addr:          "127.0.0.1:8000",
		Env:           "development",
		MongoURI:      "mongodb://localhost:27017",
		MongoDatabase: "canteenDB",
		RedisAddr:     "localhost:6379",
		KafkaBrokers:  []string{"localhost:9092"},
		KafkaLogTopic: "logs",
		ElasticAddrs:  []string{"http://localhost:9200"},
		MetricsAddr:   ":9090",
		OTLPEndpoint:  "localhost:4318",
	}
}

// Load builds the configuration from defaults, then the YAML file at
// path (skipped when path is empty or the file is absent), then the
// environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Addr, "SERVER_ADDR")
	setString(&cfg.Env, "APP_ENV")
	setString(&cfg.MongoURI, "MONGO_URI")
	setString(&cfg.MongoDatabase, "MONGO_DATABASE")
	setString(&cfg.RedisAddr, "REDIS_ADDR")
	setList(&cfg.KafkaBrokers, "KAFKA_BROKERS")
	setString(&cfg.KafkaLogTopic, "KAFKA_LOG_TOPIC")
	setList(&cfg.ElasticAddrs, "ELASTICSEARCH_ADDRS")
	setString(&cfg.MetricsAddr, "METRICS_ADDR")
	setString(&cfg.OTLPEndpoint, "OTLP_ENDPOINT")
	setString(&cfg.StripeKey, "STRIPE_SECRET_KEY")
	setString(&cfg.JWTSecret, "session_secret")
	setString(&cfg.AdminEmail, "ADMIN_EMAIL")
	setString(&cfg.AdminPassword, "ADMIN_PASSWORD")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setList(dst *[]string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		parts := strings.Split(v, ",")
		out := parts[:0]
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				out = append(out, p)
			}
		}
		*dst = out
	}
}
