package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/dmitrijs2005/schooladmin/internal/flagx"
)

// EnvAPIURL overrides the default API base URL. It may also be set in a
// .env file in the working directory.
const EnvAPIURL = "SCHOOL_API_URL"

// Config holds runtime settings for the school admin client.
type Config struct {
	APIURL   string
	StateDB  string
	Timeout  time.Duration
	LogLevel string
}

// LoadDefaults populates c with defaults.
func (c *Config) LoadDefaults() {
	c.APIURL = "http://127.0.0.1:5000"
	c.StateDB = "schooladmin.db"
	c.Timeout = 10 * time.Second
	c.LogLevel = "warn"
}

// loadEnv applies SCHOOL_API_URL. Variables already set in the process
// environment win over the .env file.
func loadEnv(c *Config, dotenv string) {
	if _, err := os.Stat(dotenv); err == nil {
		if err := godotenv.Load(dotenv); err != nil {
			panic(err)
		}
	}
	c.APIURL = flagx.EnvOr(EnvAPIURL, c.APIURL)
}

// LoadConfig applies defaults, the environment, an optional JSON file and
// command-line flags, each overriding the previous.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	loadEnv(cfg, ".env")
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
