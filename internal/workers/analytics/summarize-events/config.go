package summarizeevents

import "time"

type Config struct {
	Timeout time.Duration
	// Window is used when a job does not pass windowDays.
	Window time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
		Window:  30 * 24 * time.Hour,
	}
}
