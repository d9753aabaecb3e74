package core

//config.go

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config определяет настройки приложения (OWASP A05: Security Misconfiguration, A02: Cryptographic Failures).
// Собирается один раз при старте и передаётся явно в роутер и middleware.
type Config struct {
	AppName           string        // Имя приложения
	Addr              string        // Адрес HTTP-сервера (например, ":8080")
	Env               string        // Среда выполнения (dev, staging, prod)
	CSRFKey           string        // Ключ для CSRF-защиты
	Secure            bool          // Включает HTTPS и связанные настройки безопасности
	CertFile          string        // Путь к TLS-сертификату
	KeyFile           string        // Путь к TLS-ключу
	ShutdownTimeout   time.Duration // Таймаут для graceful shutdown
	ReadHeaderTimeout time.Duration // Таймаут чтения заголовков HTTP-запроса
	ReadTimeout       time.Duration // Таймаут чтения HTTP-запроса
	WriteTimeout      time.Duration // Таймаут записи HTTP-ответа
	IdleTimeout       time.Duration // Таймаут простоя соединения
	RequestTimeout    time.Duration // Таймаут обработки запроса в middleware
	TrustedProxies    []string      // IP/CIDR доверенных прокси (пусто — middleware не подключается)

	AdminPrefix        string   // Префикс админ-панели CMS (исключён из lower-case правила)
	ExcludedPrefixes   []string // Пути, которые не проходят через canonical/CSP middleware
	ExcludedExtensions []string // Расширения статических картинок
	CSPReportOnly      bool     // Дополнительно отдавать Content-Security-Policy-Report-Only с report-uri

	DB       DBConfig
	SMTP     SMTPConfig
	CacheTTL time.Duration
	Site     SiteConfig
}

// DBConfig — параметры подключения к MySQL.
type DBConfig struct {
	User     string
	Password string
	Host     string
	Name     string
	MaxOpen  int
	MaxIdle  int
	Lifetime time.Duration
}

// SMTPConfig — уведомления о заявках. Пустой Host отключает отправку.
type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
	To   string
}

// SiteConfig — метаданные сайта для SEO и CSP (файл site.yaml).
type SiteConfig struct {
	Name          string   `yaml:"name"`
	BaseURL       string   `yaml:"base_url"`
	Description   string   `yaml:"description"`
	Logo          string   `yaml:"logo"`
	ContactEmail  string   `yaml:"contact_email"`
	Socials       []string `yaml:"socials"`
	AnalyticsHost string   `yaml:"analytics_host"`
	FontsHost     string   `yaml:"fonts_host"`
	FontsStatic   string   `yaml:"fonts_static_host"`
	OwnDomain     string   `yaml:"own_domain"`
}

// IsDevelopment — режим разработки (влияет на CSP и HSTS).
func (c Config) IsDevelopment() bool {
	return c.Env == "dev"
}

// Load загружает конфигурацию из .env, переменных окружения и site.yaml (OWASP A05)
func Load() (Config, error) {
	// .env необязателен: в проде переменные приходят из окружения
	envFile := getEnv("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err == nil {
		LogInfo("dotenv загружен", map[string]interface{}{"file": envFile})
	}

	cfg := Config{
		AppName:           getEnv("APP_NAME", "linksite"),
		Addr:              getEnv("HTTP_ADDR", ":8080"),
		Env:               getEnv("APP_ENV", "dev"),
		CSRFKey:           getEnv("CSRF_KEY", ""),
		Secure:            getEnv("SECURE", "") == "true",
		CertFile:          getEnv("TLS_CERT_FILE", ""),
		KeyFile:           getEnv("TLS_KEY_FILE", ""),
		ShutdownTimeout:   getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		ReadHeaderTimeout: getEnvDuration("READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       getEnvDuration("READ_TIMEOUT", 10*time.Second),
		WriteTimeout:      getEnvDuration("WRITE_TIMEOUT", 30*time.Second),
		IdleTimeout:       getEnvDuration("IDLE_TIMEOUT", 60*time.Second),
		RequestTimeout:    getEnvDuration("REQUEST_TIMEOUT", 15*time.Second),
		TrustedProxies:    getEnvList("TRUSTED_PROXIES", nil),

		AdminPrefix:        getEnv("ADMIN_PREFIX", "/admin"),
		ExcludedPrefixes:   getEnvList("EXCLUDED_PREFIXES", []string{"/assets/", "/favicon.ico"}),
		ExcludedExtensions: getEnvList("EXCLUDED_EXTENSIONS", []string{".svg", ".png", ".jpg", ".jpeg", ".gif", ".webp", ".ico"}),
		CSPReportOnly:      getEnv("CSP_REPORT_ONLY", "") == "true",

		DB: DBConfig{
			User:     getEnv("MYSQL_USER", "root"),
			Password: getEnv("MYSQL_PASSWORD", ""),
			Host:     getEnv("MYSQL_HOST", "localhost:3306"),
			Name:     getEnv("MYSQL_DATABASE", "linksite"),
			MaxOpen:  getEnvInt("MYSQL_MAX_OPEN", 25),
			MaxIdle:  getEnvInt("MYSQL_MAX_IDLE", 25),
			Lifetime: getEnvDuration("MYSQL_CONN_LIFETIME", 5*time.Minute),
		},
		SMTP: SMTPConfig{
			Host: getEnv("SMTP_HOST", ""),
			Port: getEnvInt("SMTP_PORT", 587),
			User: getEnv("SMTP_USER", ""),
			Pass: getEnv("SMTP_PASS", ""),
			From: getEnv("SMTP_FROM", ""),
			To:   getEnv("SMTP_TO", ""),
		},
		CacheTTL: getEnvDuration("CACHE_TTL", 5*time.Minute),
		Site:     defaultSite(),
	}

	if err := loadSiteFile(getEnv("SITE_FILE", "site.yaml"), &cfg.Site); err != nil {
		return cfg, err
	}

	if cfg.CSRFKey == "" {
		key, err := generateRandomKey()
		if err != nil {
			return cfg, err
		}
		cfg.CSRFKey = key
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// validate — проверки для продакшен-среды
func (c Config) validate() error {
	if c.Addr == "" {
		return errors.New("HTTP_ADDR пуст")
	}
	if !strings.HasPrefix(c.AdminPrefix, "/") {
		return fmt.Errorf("ADMIN_PREFIX должен начинаться с '/': %q", c.AdminPrefix)
	}
	if c.Env != "prod" {
		return nil
	}
	if len(c.CSRFKey) < 32 {
		return fmt.Errorf("недостаточная длина CSRF_KEY в продакшене: %d", len(c.CSRFKey))
	}
	if c.Secure && (c.CertFile == "" || c.KeyFile == "") {
		return errors.New("отсутствует TLS_CERT_FILE или TLS_KEY_FILE в продакшене")
	}
	if c.DB.Password == "" {
		return errors.New("отсутствует MYSQL_PASSWORD в продакшене")
	}
	return nil
}

func defaultSite() SiteConfig {
	return SiteConfig{
		Name:          "LinkForge",
		BaseURL:       "https://example.com",
		Description:   "White-hat link building: guest posts, niche edits and outreach on vetted sites.",
		Logo:          "/assets/img/logo.svg",
		ContactEmail:  "hello@example.com",
		AnalyticsHost: "https://www.googletagmanager.com",
		FontsHost:     "https://fonts.googleapis.com",
		FontsStatic:   "https://fonts.gstatic.com",
		OwnDomain:     "example.com",
	}
}

// loadSiteFile накладывает site.yaml поверх значений по умолчанию. Отсутствие файла — не ошибка.
func loadSiteFile(path string, site *SiteConfig) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("чтение %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, site); err != nil {
		return fmt.Errorf("разбор %s: %w", path, err)
	}
	site.BaseURL = strings.TrimRight(site.BaseURL, "/")
	return nil
}

// getEnv возвращает значение переменной окружения или значение по умолчанию
func getEnv(key, def string) string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	return val
}

// getEnvDuration возвращает значение длительности из переменной окружения или значение по умолчанию
func getEnvDuration(key string, def time.Duration) time.Duration {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		LogError("Неверный формат длительности", map[string]interface{}{"key": key, "value": val, "error": err.Error()})
		return def
	}
	return d
}

func getEnvInt(key string, def int) int {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		LogError("Неверный формат числа", map[string]interface{}{"key": key, "value": val, "error": err.Error()})
		return def
	}
	return n
}

// getEnvList — список через запятую
func getEnvList(key string, def []string) []string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// generateRandomKey создаёт случайный 32-байтовый ключ для CSRF в формате base64.
// Слабого запасного ключа нет: без crypto/rand приложение не стартует.
func generateRandomKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("генерация CSRF-ключа: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}
