package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/schooladmin/internal/flagx"
	"github.com/dmitrijs2005/schooladmin/internal/timex"
)

// JsonConfig is the on-disk form of Config. Empty fields leave the current
// value alone.
type JsonConfig struct {
	APIURL   string         `json:"api_url"`
	StateDB  string         `json:"state_db"`
	Timeout  timex.Duration `json:"timeout"`
	LogLevel string         `json:"log_level"`
}

// parseJson overlays cfg with the file named by -c/-config, if any. It
// panics when the file cannot be read or parsed.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.APIURL != "" {
		cfg.APIURL = jc.APIURL
	}
	if jc.StateDB != "" {
		cfg.StateDB = jc.StateDB
	}
	if jc.Timeout.Duration > 0 {
		cfg.Timeout = jc.Timeout.Duration
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
}
