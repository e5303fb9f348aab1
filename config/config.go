package config

import "os"

type Config struct {
	HTTPPort string

	// StatsBackend selects where cross-session stats live: "file",
	// "redis" or "mongo".
	StatsBackend string
	StatsPath    string
	RedisAddr    string
	MongoURI     string
	MongoDB      string

	// CatalogSource selects the question catalog: "embedded" or "mongo".
	CatalogSource string

	AudioMuted bool
}

func Load() *Config {
	return &Config{
		HTTPPort:      getEnv("HTTP_PORT", "8080"),
		StatsBackend:  getEnv("STATS_BACKEND", "file"),
		StatsPath:     getEnv("STATS_PATH", "mlarcade-stats.json"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:       getEnv("MONGO_DB", "mlarcade"),
		CatalogSource: getEnv("CATALOG_SOURCE", "embedded"),
		AudioMuted:    getEnv("AUDIO_MUTED", "") != "",
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
