package config

import (
	"fmt"
	"net/url"
	"regexp"
	"time"

	"github.com/spf13/viper"
)

// Config 全局配置结构
// 设计说明：使用Viper管理配置，支持YAML文件与环境变量覆盖
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Security   SecurityConfig   `mapstructure:"security"`
	Pagination PaginationConfig `mapstructure:"pagination"`
	MQ         MQConfig         `mapstructure:"mq"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"` // debug | release | test
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	Charset         string        `mapstructure:"charset"`
	ParseTime       bool          `mapstructure:"parse_time"`
	Loc             string        `mapstructure:"loc"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN 生成MySQL连接字符串
// 注意：loc参数需要URL编码（Asia/Shanghai → Asia%2FShanghai）
func (d DatabaseConfig) DSN() string {
	loc := url.QueryEscape(d.Loc)
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.Charset, d.ParseTime, loc)
}

type RedisConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr 返回Redis地址
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type JWTConfig struct {
	Secret            string        `mapstructure:"secret"`
	AccessTokenExpire time.Duration `mapstructure:"access_token_expire"`
}

// DefaultPasswordRegex 默认口令正则：至少同时包含字母与数字
const DefaultPasswordRegex = `[A-Za-z].*[0-9]|[0-9].*[A-Za-z]`

// SecurityConfig 注册与口令策略
type SecurityConfig struct {
	UsernameMinLength int `mapstructure:"username_min_length"`
	UsernameMaxLength int `mapstructure:"username_max_length"`
	PasswordMinLength int `mapstructure:"password_min_length"`
	// PasswordRegex 口令复杂度正则,不符合时注册失败
	PasswordRegex string `mapstructure:"password_regex"`
	// WeakPasswordMessage 口令不达标时返回给客户端的提示
	WeakPasswordMessage string `mapstructure:"weak_password_message"`
	BcryptCost          int    `mapstructure:"bcrypt_cost"`
}

// PaginationConfig 列表接口默认分页
type PaginationConfig struct {
	DefaultPerPage int `mapstructure:"default_per_page"`
}

type MQConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug | info | warn | error
	Format string `mapstructure:"format"` // console | json
	Output string `mapstructure:"output"` // stdout | stderr | /path/to/file
}

// Load 加载配置文件
// 支持：
// 1. 默认加载config/config.yaml
// 2. 环境变量覆盖（如BOOKSHOP_DATABASE_PASSWORD）
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	v.SetEnvPrefix("BOOKSHOP")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Security.UsernameMinLength == 0 {
		cfg.Security.UsernameMinLength = 4
	}
	if cfg.Security.UsernameMaxLength == 0 {
		cfg.Security.UsernameMaxLength = 32
	}
	if cfg.Security.PasswordMinLength == 0 {
		cfg.Security.PasswordMinLength = 8
	}
	if cfg.Security.PasswordRegex == "" {
		cfg.Security.PasswordRegex = DefaultPasswordRegex
	}
	if cfg.Security.WeakPasswordMessage == "" {
		cfg.Security.WeakPasswordMessage = "密码强度不足"
	}
	if cfg.Pagination.DefaultPerPage == 0 {
		cfg.Pagination.DefaultPerPage = 20
	}
	if cfg.JWT.AccessTokenExpire == 0 {
		cfg.JWT.AccessTokenExpire = 30 * time.Minute
	}
}

// validate 配置校验
func validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("无效的服务端口: %d", cfg.Server.Port)
	}

	if cfg.JWT.Secret == "" {
		return fmt.Errorf("JWT密钥不能为空")
	}
	if cfg.JWT.Secret == "your-secret-key-change-in-production" && cfg.Server.Mode == "release" {
		return fmt.Errorf("生产环境必须修改JWT密钥")
	}

	if cfg.Security.UsernameMinLength > cfg.Security.UsernameMaxLength {
		return fmt.Errorf("用户名长度下限不能大于上限")
	}

	if _, err := regexp.Compile(cfg.Security.PasswordRegex); err != nil {
		return fmt.Errorf("无效的口令正则: %w", err)
	}

	if cfg.MQ.Enabled && cfg.MQ.URL == "" {
		return fmt.Errorf("启用MQ时必须配置连接URL")
	}

	return nil
}
