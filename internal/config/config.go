package config

import "github.com/caarlos0/env/v10"

// Config centraliza la configuracion del servicio.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`

	LLMAPIKey  string `env:"LLM_API_KEY,required"`
	LLMBaseURL string `env:"LLM_BASE_URL" envDefault:"https://api.openai.com/v1"`
	LLMModel   string `env:"LLM_MODEL" envDefault:"gpt-5.1"`

	IndexerBaseURL string `env:"INDEXER_BASE_URL,required"`
	IndexerAPIKey  string `env:"INDEXER_API_KEY"`

	// FlagshipContract es la coleccion con soporte completo de persona;
	// el resto usa el camino legacy.
	FlagshipContract string `env:"FLAGSHIP_CONTRACT,required"`

	JWTSecret         string `env:"JWT_SECRET,required"`
	JWTAccessTTLMins  int    `env:"JWT_ACCESS_TTL_MINUTES" envDefault:"1440"`
	JWTRefreshTTLMins int    `env:"JWT_REFRESH_TTL_MINUTES" envDefault:"43200"`

	// CronSecret protege el trigger del scheduler (header o query param).
	CronSecret string `env:"CRON_SECRET,required"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Knobs del scheduler. 8 ticks/dia a 0.4 de probabilidad dan ~3 posts
	// esperados, igual que la cuota de originales.
	DailyOriginalQuota  int     `env:"DAILY_ORIGINAL_QUOTA" envDefault:"3"`
	DailyReplyQuota     int     `env:"DAILY_REPLY_QUOTA" envDefault:"6"`
	PostProbability     float64 `env:"POST_PROBABILITY" envDefault:"0.4"`
	SimulatedDayTicks   int     `env:"SIMULATED_DAY_TICKS" envDefault:"8"`
	InterCharacterDelay int     `env:"INTER_CHARACTER_DELAY_MS" envDefault:"750"`
}

// LoadConfig carga la configuracion desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
