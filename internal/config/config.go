package config

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/viper"
)

// Config хранит все настройки приложения
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Game     GameConfig
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port         string
	ReadTimeout  int
	WriteTimeout int
}

// DatabaseConfig содержит настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig содержит унифицированные настройки подключения к Redis
// Поддерживает режимы: single, sentinel, cluster
type RedisConfig struct {
	// Mode: Режим работы Redis ("single", "sentinel", "cluster"). По умолчанию "single".
	Mode string `mapstructure:"mode"`

	// Addrs: Список адресов Redis (хост:порт). Используется для всех режимов.
	Addrs []string `mapstructure:"addrs"`

	// Addr: Альтернативный адрес для режима 'single', если Addrs пустой.
	Addr string `mapstructure:"addr"`

	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// MasterName: Имя мастер-сервера Redis (только для режима "sentinel")
	MasterName string `mapstructure:"master_name"`
}

// GameConfig содержит игровые настройки: квоту категорий для набора сессии,
// порог победы и интервал фонового истечения сессий
type GameConfig struct {
	// Categories: категории, из которых собирается набор сессии
	Categories []string `mapstructure:"categories"`

	// QuestionsPerCategory: сколько вопросов берётся из каждой категории
	QuestionsPerCategory int `mapstructure:"questions_per_category"`

	// WinThresholdPercent: процент от максимально возможного счёта для победы
	WinThresholdPercent float64 `mapstructure:"win_threshold_percent"`

	// ExpirySweepSec: интервал фоновой проверки просроченных сессий (в секундах)
	ExpirySweepSec int `mapstructure:"expiry_sweep_sec"`

	// SessionCacheTTLMin: время жизни кеша набора вопросов сессии (в минутах)
	SessionCacheTTLMin int `mapstructure:"session_cache_ttl_min"`
}

// CategoryQuota возвращает квоту категорий в форме отображения категория→количество
func (g *GameConfig) CategoryQuota() map[string]int {
	quota := make(map[string]int, len(g.Categories))
	for _, c := range g.Categories {
		quota[c] = g.QuestionsPerCategory
	}
	return quota
}

// TotalQuestions возвращает полный размер набора вопросов сессии
func (g *GameConfig) TotalQuestions() int {
	return len(g.Categories) * g.QuestionsPerCategory
}

// PostgresConnectionString формирует строку подключения к PostgreSQL
func (d *DatabaseConfig) PostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// Load загружает конфигурацию из файла и переменных окружения
func Load(configPath string) (*Config, error) {
	vip := viper.New() // Используем новый экземпляр Viper, чтобы избежать глобального состояния

	// 1. Значения по умолчанию для игровой секции (4 категории × 4 вопроса, порог 80%)
	vip.SetDefault("game.categories", []string{"Sports", "Science", "Music", "Technology"})
	vip.SetDefault("game.questions_per_category", 4)
	vip.SetDefault("game.win_threshold_percent", 80.0)
	vip.SetDefault("game.expiry_sweep_sec", 60)
	vip.SetDefault("game.session_cache_ttl_min", 60)
	vip.SetDefault("server.port", "8080")
	vip.SetDefault("server.readtimeout", 15)
	vip.SetDefault("server.writetimeout", 15)

	// 2. Привязываем переменные окружения ЯВНО
	// Привязка для секции Database
	vip.BindEnv("database.host", "DATABASE_HOST")
	vip.BindEnv("database.port", "DATABASE_PORT")
	vip.BindEnv("database.user", "DATABASE_USER")
	vip.BindEnv("database.password", "DATABASE_PASSWORD")
	vip.BindEnv("database.dbname", "DATABASE_DBNAME")
	vip.BindEnv("database.sslmode", "DATABASE_SSLMODE")

	// Привязка для секции Redis
	vip.BindEnv("redis.mode", "REDIS_MODE")
	vip.BindEnv("redis.addrs", "REDIS_ADDRS")
	vip.BindEnv("redis.addr", "REDIS_ADDR")
	vip.BindEnv("redis.password", "REDIS_PASSWORD")
	vip.BindEnv("redis.db", "REDIS_DB")
	vip.BindEnv("redis.master_name", "REDIS_MASTER_NAME")

	// Привязка для секции Game
	vip.BindEnv("game.questions_per_category", "GAME_QUESTIONS_PER_CATEGORY")
	vip.BindEnv("game.win_threshold_percent", "GAME_WIN_THRESHOLD_PERCENT")
	vip.BindEnv("game.expiry_sweep_sec", "GAME_EXPIRY_SWEEP_SEC")

	// Привязка для Server
	vip.BindEnv("server.port", "SERVER_PORT")

	// 3. Читаем файл конфигурации (не страшно, если его нет, т.к. есть BindEnv)
	if configPath != "" {
		vip.SetConfigFile(configPath)
		if err := vip.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				log.Printf("Файл конфигурации '%s' не найден, используются переменные окружения/умолчания.", configPath)
			} else {
				log.Printf("Предупреждение: не удалось прочитать файл конфигурации '%s': %v", configPath, err)
			}
		}
	}

	// 4. Анмаршалим конфигурацию (Viper объединит файл, env vars и умолчания)
	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 5. Логирование конфигурации (только в debug режиме)
	if os.Getenv("GIN_MODE") != "release" {
		log.Printf("--- Загруженные значения конфигурации ---")
		log.Printf("Database Host: %s", cfg.Database.Host)
		log.Printf("Database Port: %s", cfg.Database.Port)
		log.Printf("Database Name: %s", cfg.Database.DBName)
		log.Printf("Redis Addr: %s", cfg.Redis.Addr)
		log.Printf("Server Port: %s", cfg.Server.Port)
		log.Printf("Game Categories: %v", cfg.Game.Categories)
		log.Printf("Game Questions Per Category: %d", cfg.Game.QuestionsPerCategory)
		log.Printf("Game Win Threshold: %.1f%%", cfg.Game.WinThresholdPercent)
		log.Printf("-----------------------------------------")
	}

	// 6. Проверка обязательных параметров
	if cfg.Database.Host == "" || cfg.Database.DBName == "" || cfg.Database.User == "" {
		return nil, fmt.Errorf("database configuration (host, dbname, user) is incomplete in config (check DATABASE_HOST, DATABASE_DBNAME, DATABASE_USER env vars)")
	}
	if len(cfg.Game.Categories) == 0 || cfg.Game.QuestionsPerCategory <= 0 {
		return nil, fmt.Errorf("game configuration requires at least one category and a positive questions_per_category")
	}
	if cfg.Game.WinThresholdPercent <= 0 || cfg.Game.WinThresholdPercent > 100 {
		return nil, fmt.Errorf("game.win_threshold_percent must be in (0, 100]")
	}

	return &cfg, nil
}
