package config

import (
	"log"
	"os"
)

type Config struct {
	HTTPPort    string
	DatabaseDSN string
	JWTSecret   string
	CORSOrigins string
}

func Load() *Config {
	cfg := &Config{
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		DatabaseDSN: getEnv("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=cokhi port=5432 sslmode=disable"),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		CORSOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
	}

	// Kiểm tra bắt buộc cho production
	if cfg.JWTSecret == "" {
		log.Fatal("[FATAL] Chưa khai báo biến môi trường JWT_SECRET! Bắt buộc khi chạy production.")
	}
	if len(cfg.JWTSecret) < 32 {
		log.Fatal("[FATAL] JWT_SECRET phải dài ít nhất 32 ký tự! Rủi ro bảo mật.")
	}
	if cfg.DatabaseDSN == "host=localhost user=postgres password=postgres dbname=cokhi port=5432 sslmode=disable" {
		log.Println("[WARN] DATABASE_DSN đang dùng giá trị mặc định, production phải khai báo thông tin Postgres riêng.")
	}
	if cfg.CORSOrigins == "http://localhost:5173" {
		log.Println("[WARN] CORS_ALLOWED_ORIGINS đang dùng giá trị mặc định, production phải khai báo domain riêng.")
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
