package config

import (
	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port      int    `env:"PORT" envDefault:"3000"`
	PgURL     string `env:"PG_URL" required:"true"`
	PgPoolMax int    `env:"PG_POOL_MAX" envDefault:"10"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Shared HMAC secret for webhook signatures. When empty every
	// verification fails, so the relay never accepts unsigned traffic.
	ProxySecret string `env:"PROXY_SECRET"`
	ProxyMount  string `env:"PROXY_MOUNT" envDefault:"/tickets"`
	ProxyDebug  bool   `env:"PROXY_DEBUG" envDefault:"false"`

	// Basic auth for /admin routes.
	AdminUser string `env:"ADMIN_USER" envDefault:"admin"`
	AdminPass string `env:"ADMIN_PASS" required:"true"`

	// Optional audit event fanout. Disabled when unset.
	KafkaBrokers     []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTicketTopic string   `env:"KAFKA_TICKETS_TOPIC" envDefault:"tickets.attached"`

	OpensearchUrls        []string `env:"OPENSEARCH_URLS" envSeparator:","`
	OpensearchIndexEvents string   `env:"OPENSEARCH_INDEX_TICKETS" envDefault:"ticket-events"`
}

func New() (Config, error) {
	c, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, err
	}

	return c, nil
}
