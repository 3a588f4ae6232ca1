package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config captures environment driven configuration values for the bot.
type Config struct {
	HTTPPort       int
	SQLiteDSN      string
	BotToken       string
	ChannelID      string
	Timezone       string
	TeamMention    string
	LogLevel       string
	ReminderHour   int
	LateCutoffHour int
}

// Load parses configuration values from the current process environment.
//
// The loader applies defaults for optional fields while validating required
// values, reporting every missing or invalid entry in one pass.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:       8080,
		SQLiteDSN:      "file:routinebot.db",
		Timezone:       "Europe/Riga",
		LogLevel:       "info",
		ReminderHour:   13,
		LateCutoffHour: 16,
	}

	missing := make([]string, 0, 2)
	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("ROUTINE_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "ROUTINE_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("ROUTINE_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if token := strings.TrimSpace(os.Getenv("ROUTINE_BOT_TOKEN")); token == "" {
		missing = append(missing, "ROUTINE_BOT_TOKEN")
	} else {
		cfg.BotToken = token
	}

	if channel := strings.TrimSpace(os.Getenv("ROUTINE_CHANNEL_ID")); channel == "" {
		missing = append(missing, "ROUTINE_CHANNEL_ID")
	} else {
		cfg.ChannelID = channel
	}

	if tz := strings.TrimSpace(os.Getenv("ROUTINE_TIMEZONE")); tz != "" {
		cfg.Timezone = tz
	}

	cfg.TeamMention = strings.TrimSpace(os.Getenv("ROUTINE_TEAM_MENTION"))

	if level := strings.TrimSpace(os.Getenv("ROUTINE_LOG_LEVEL")); level != "" {
		cfg.LogLevel = level
	}

	if hourValue := strings.TrimSpace(os.Getenv("ROUTINE_REMINDER_HOUR")); hourValue != "" {
		hour, err := strconv.Atoi(hourValue)
		if err != nil || hour < 0 || hour > 23 {
			invalid = append(invalid, "ROUTINE_REMINDER_HOUR")
		} else {
			cfg.ReminderHour = hour
		}
	}

	if hourValue := strings.TrimSpace(os.Getenv("ROUTINE_LATE_CUTOFF_HOUR")); hourValue != "" {
		hour, err := strconv.Atoi(hourValue)
		if err != nil || hour < 0 || hour > 23 {
			invalid = append(invalid, "ROUTINE_LATE_CUTOFF_HOUR")
		} else {
			cfg.LateCutoffHour = hour
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
