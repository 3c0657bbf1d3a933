package config

import (
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig is the process-wide configuration, loaded once at startup.
// Every secret the server needs (database credentials, payments API key,
// oracle API key, JWT secret, master access key) comes through here.
type AppConfig struct {
	System   SysConfig      `yaml:"system" json:"system"`
	Web      WebConfig      `yaml:"web" json:"web"`
	Database DBConfig       `yaml:"database" json:"database"`
	Redis    RedisConfig    `yaml:"redis" json:"redis"`
	Payments PaymentsConfig `yaml:"payments" json:"payments"`
	Oracle   OracleConfig   `yaml:"oracle" json:"oracle"`
	Telegram TelegramConfig `yaml:"telegram" json:"telegram"`
	Smtp     SmtpConfig     `yaml:"smtp" json:"smtp"`
	Logger   LogConfig      `yaml:"logger" json:"logger"`
}

type SysConfig struct {
	Appid    string `yaml:"appid" json:"appid"`
	Location string `yaml:"location" json:"location"`
	Workdir  string `yaml:"workdir" json:"workdir"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type WebConfig struct {
	Host string `yaml:"host" json:"host"`
	Port int    `yaml:"port" json:"port"`
	// JwtSecret signs member and admin API tokens.
	JwtSecret string `yaml:"jwt_secret" json:"-"`
	// MasterAccessKey gates the vault endpoints. Empty means the gate is
	// closed for everyone.
	MasterAccessKey string `yaml:"master_access_key" json:"-"`
}

type DBConfig struct {
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Name     string `yaml:"name" json:"name"`
	User     string `yaml:"user" json:"user"`
	Passwd   string `yaml:"passwd" json:"-"`
	MaxConn  int    `yaml:"max_conn" json:"max_conn"`
	IdleConn int    `yaml:"idle_conn" json:"idle_conn"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type RedisConfig struct {
	Addr   string `yaml:"addr" json:"addr"`
	Passwd string `yaml:"passwd" json:"-"`
	DB     int    `yaml:"db" json:"db"`
}

type PaymentsConfig struct {
	ApiKey  string `yaml:"api_key" json:"-"`
	BaseURL string `yaml:"base_url" json:"base_url"`
	Timeout int    `yaml:"timeout" json:"timeout"` // seconds
}

type OracleConfig struct {
	ApiKey  string `yaml:"api_key" json:"-"`
	BaseURL string `yaml:"base_url" json:"base_url"`
	Model   string `yaml:"model" json:"model"`
	Timeout int    `yaml:"timeout" json:"timeout"` // seconds
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token" json:"-"`
	ChatID   string `yaml:"chat_id" json:"chat_id"`
	BaseURL  string `yaml:"base_url" json:"base_url"`
}

type SmtpConfig struct {
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Username string `yaml:"username" json:"username"`
	Passwd   string `yaml:"passwd" json:"-"`
	From     string `yaml:"from" json:"from"`
	To       string `yaml:"to" json:"to"`
}

type LogConfig struct {
	Mode       string `yaml:"mode" json:"mode"` // development or production
	FileEnable bool   `yaml:"file_enable" json:"file_enable"`
	Filename   string `yaml:"filename" json:"filename"`
}

var DefaultAppConfig = AppConfig{
	System: SysConfig{
		Appid:    "lowkey",
		Location: "America/New_York",
		Workdir:  "/var/lowkey",
		Debug:    true,
	},
	Web: WebConfig{
		Host:      "0.0.0.0",
		Port:      2979,
		JwtSecret: "9b6de5cc-lowkey-0cfb-7ba3-lk88sys",
	},
	Database: DBConfig{
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "lowkey_v1",
		User:     "postgres",
		Passwd:   "myroot",
		MaxConn:  100,
		IdleConn: 10,
	},
	Redis: RedisConfig{
		Addr: "127.0.0.1:6379",
	},
	Payments: PaymentsConfig{
		BaseURL: "https://api.stripe.com",
		Timeout: 30,
	},
	Oracle: OracleConfig{
		BaseURL: "https://api.openai.com",
		Model:   "gpt-4o-mini",
		Timeout: 60,
	},
	Telegram: TelegramConfig{
		BaseURL: "https://api.telegram.org",
	},
	Smtp: SmtpConfig{
		Port: 587,
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/lowkey/lowkey.log",
	},
}

func setEnvValue(name string, f func(v string)) {
	var evalue = os.Getenv(name)
	if evalue != "" {
		f(evalue)
	}
}

func setEnvIntValue(name string, f func(v int)) {
	var evalue = os.Getenv(name)
	if evalue != "" {
		p, err := strconv.Atoi(evalue)
		if err == nil {
			f(p)
		}
	}
}

func setEnvBoolValue(name string, f func(v bool)) {
	var evalue = os.Getenv(name)
	if evalue != "" {
		f(strings.EqualFold(evalue, "true") || evalue == "1" || strings.EqualFold(evalue, "on"))
	}
}

// LoadConfig reads the YAML config file and applies LOWKEY_* environment
// overrides. A missing or empty path yields the built-in defaults.
func LoadConfig(cfile string) *AppConfig {
	cfg := new(AppConfig)
	*cfg = DefaultAppConfig
	if cfile != "" {
		if data, err := os.ReadFile(cfile); err == nil {
			_ = yaml.Unmarshal(data, cfg)
		}
	}

	setEnvValue("LOWKEY_SYSTEM_WORKDIR", func(v string) { cfg.System.Workdir = v })
	setEnvBoolValue("LOWKEY_SYSTEM_DEBUG", func(v bool) { cfg.System.Debug = v })

	setEnvValue("LOWKEY_WEB_HOST", func(v string) { cfg.Web.Host = v })
	setEnvIntValue("LOWKEY_WEB_PORT", func(v int) { cfg.Web.Port = v })
	setEnvValue("LOWKEY_WEB_JWT_SECRET", func(v string) { cfg.Web.JwtSecret = v })
	setEnvValue("LOWKEY_MASTER_ACCESS_KEY", func(v string) { cfg.Web.MasterAccessKey = v })

	setEnvValue("LOWKEY_DB_HOST", func(v string) { cfg.Database.Host = v })
	setEnvIntValue("LOWKEY_DB_PORT", func(v int) { cfg.Database.Port = v })
	setEnvValue("LOWKEY_DB_NAME", func(v string) { cfg.Database.Name = v })
	setEnvValue("LOWKEY_DB_USER", func(v string) { cfg.Database.User = v })
	setEnvValue("LOWKEY_DB_PWD", func(v string) { cfg.Database.Passwd = v })
	setEnvBoolValue("LOWKEY_DB_DEBUG", func(v bool) { cfg.Database.Debug = v })

	setEnvValue("LOWKEY_REDIS_ADDR", func(v string) { cfg.Redis.Addr = v })
	setEnvValue("LOWKEY_REDIS_PWD", func(v string) { cfg.Redis.Passwd = v })
	setEnvIntValue("LOWKEY_REDIS_DB", func(v int) { cfg.Redis.DB = v })

	setEnvValue("LOWKEY_PAYMENTS_API_KEY", func(v string) { cfg.Payments.ApiKey = v })
	setEnvValue("LOWKEY_PAYMENTS_BASE_URL", func(v string) { cfg.Payments.BaseURL = v })

	setEnvValue("LOWKEY_ORACLE_API_KEY", func(v string) { cfg.Oracle.ApiKey = v })
	setEnvValue("LOWKEY_ORACLE_BASE_URL", func(v string) { cfg.Oracle.BaseURL = v })
	setEnvValue("LOWKEY_ORACLE_MODEL", func(v string) { cfg.Oracle.Model = v })

	setEnvValue("LOWKEY_TELEGRAM_BOT_TOKEN", func(v string) { cfg.Telegram.BotToken = v })
	setEnvValue("LOWKEY_TELEGRAM_CHAT_ID", func(v string) { cfg.Telegram.ChatID = v })

	setEnvValue("LOWKEY_SMTP_HOST", func(v string) { cfg.Smtp.Host = v })
	setEnvIntValue("LOWKEY_SMTP_PORT", func(v int) { cfg.Smtp.Port = v })
	setEnvValue("LOWKEY_SMTP_USERNAME", func(v string) { cfg.Smtp.Username = v })
	setEnvValue("LOWKEY_SMTP_PWD", func(v string) { cfg.Smtp.Passwd = v })
	setEnvValue("LOWKEY_SMTP_FROM", func(v string) { cfg.Smtp.From = v })
	setEnvValue("LOWKEY_SMTP_TO", func(v string) { cfg.Smtp.To = v })

	setEnvValue("LOWKEY_LOGGER_MODE", func(v string) { cfg.Logger.Mode = v })
	setEnvBoolValue("LOWKEY_LOGGER_FILE_ENABLE", func(v bool) { cfg.Logger.FileEnable = v })
	setEnvValue("LOWKEY_LOGGER_FILENAME", func(v string) { cfg.Logger.Filename = v })

	return cfg
}
