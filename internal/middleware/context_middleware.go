package middleware

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/farellandr/eventbuddy/config"
	"github.com/farellandr/eventbuddy/internal/helpers"
	"github.com/farellandr/eventbuddy/internal/ledger"
)

const (
	dbKey        = "db"
	ledgerKey    = "ledger"
	configKey    = "config"
	tokensKey    = "tokens"
	blacklistKey = "blacklist"
	loggerKey    = "logger"
)

func DatabaseMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(dbKey, db)
		c.Next()
	}
}

func LedgerMiddleware(l *ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ledgerKey, l)
		c.Next()
	}
}

func ConfigMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(configKey, cfg)
		c.Next()
	}
}

func TokenMiddleware(tokens *helpers.TokenIssuer, blacklist *helpers.TokenBlacklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(tokensKey, tokens)
		c.Set(blacklistKey, blacklist)
		c.Next()
	}
}

func LoggerMiddleware(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(loggerKey, log)
		c.Next()
	}
}

func GetDB(c *gin.Context) *gorm.DB {
	db, exists := c.Get(dbKey)
	if !exists {
		return nil
	}
	return db.(*gorm.DB)
}

func GetLedger(c *gin.Context) *ledger.Ledger {
	l, exists := c.Get(ledgerKey)
	if !exists {
		return nil
	}
	return l.(*ledger.Ledger)
}

func GetConfig(c *gin.Context) *config.Config {
	cfg, exists := c.Get(configKey)
	if !exists {
		return nil
	}
	return cfg.(*config.Config)
}

func GetTokenIssuer(c *gin.Context) *helpers.TokenIssuer {
	tokens, exists := c.Get(tokensKey)
	if !exists {
		return nil
	}
	return tokens.(*helpers.TokenIssuer)
}

func GetBlacklist(c *gin.Context) *helpers.TokenBlacklist {
	bl, exists := c.Get(blacklistKey)
	if !exists {
		return nil
	}
	return bl.(*helpers.TokenBlacklist)
}

// GetLogger falls back to slog.Default when no logger was installed.
func GetLogger(c *gin.Context) *slog.Logger {
	log, exists := c.Get(loggerKey)
	if !exists {
		return slog.Default()
	}
	return log.(*slog.Logger)
}
