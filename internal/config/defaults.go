package config

import (
	"github.com/knadh/koanf/providers/confmap"
)

// EnvPrefix de las variables de entorno propias (PETCARE_SCHEDULE__TIMEZONE=...).
const EnvPrefix = "PETCARE_"

func DefaultConfig() map[string]interface{} {
	return map[string]interface{}{
		"app": map[string]interface{}{
			"name": "petcare-reminders",
		},
		"log": map[string]interface{}{
			"level":  "info",
			"format": "text",
		},
		"http": map[string]interface{}{
			"addr":             ":8080",
			"shutdown_timeout": "10s",
		},
		"auth": map[string]interface{}{
			"verify_url": "",
			"api_key":    "",
			"timeout":    "5s",
		},
		"storage": map[string]interface{}{
			"driver":  "memory",
			"dsn":     "",
			"migrate": true,
			"timeout": "5s",
		},
		"schedule": map[string]interface{}{
			"timezone":          "Asia/Ho_Chi_Minh",
			"daily_cron":        "1 0 * * *",
			"periodic_interval": "5m",
			"pass_timeout":      "2m",
			"feeding_lead":      "1h",
			"run_on_start":      false,
		},
		"notify": map[string]interface{}{
			"email": map[string]interface{}{
				"enabled":  false,
				"host":     "smtp.gmail.com",
				"port":     465,
				"username": "",
				"password": "",
				"from":     "",
				"ssl":      true,
				"timeout":  "15s",
			},
			"webhook": map[string]interface{}{
				"enabled": false,
				"url":     "",
				"token":   "",
				"timeout": "10s",
				"retries": 2,
			},
			"telegram": map[string]interface{}{
				"enabled": false,
				"token":   "",
				"chat_id": 0,
			},
		},
	}
}

func NewDefaultProvider() *confmap.Confmap {
	return confmap.Provider(DefaultConfig(), ".")
}
