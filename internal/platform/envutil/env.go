package envutil

import (
	"os"
	"strconv"

	"github.com/vetdesk/frontdesk-backend/internal/platform/logger"
)

func Get(key, defaultVal string, log *logger.Logger) string {
	val, ok := os.LookupEnv(key)
	if !ok {
		if log != nil {
			log.Debug("environment variable not set, using default", "env_var", key, "default", defaultVal)
		}
		return defaultVal
	}
	return val
}

func GetInt(key string, defaultVal int, log *logger.Logger) int {
	valStr, ok := os.LookupEnv(key)
	if !ok {
		if log != nil {
			log.Debug("environment variable not set, using default", "env_var", key, "default", defaultVal)
		}
		return defaultVal
	}
	i, err := strconv.Atoi(valStr)
	if err != nil {
		if log != nil {
			log.Warn("environment variable is not an int, using default", "env_var", key, "value", valStr, "default", defaultVal, "error", err)
		}
		return defaultVal
	}
	return i
}

func GetBool(key string, defaultVal bool, log *logger.Logger) bool {
	valStr, ok := os.LookupEnv(key)
	if !ok {
		return defaultVal
	}
	b, err := strconv.ParseBool(valStr)
	if err != nil {
		if log != nil {
			log.Warn("environment variable is not a bool, using default", "env_var", key, "value", valStr, "default", defaultVal, "error", err)
		}
		return defaultVal
	}
	return b
}
