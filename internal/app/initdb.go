package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/lowkeylabs/lowkey/config"
	"github.com/lowkeylabs/lowkey/internal/access"
	"github.com/lowkeylabs/lowkey/internal/domain"
	"github.com/lowkeylabs/lowkey/internal/ids"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func getDatabase(cfg config.DBConfig) *gorm.DB {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
		cfg.Host, cfg.Port, cfg.User, cfg.Passwd, cfg.Name)

	level := gormlogger.Warn
	if cfg.Debug {
		level = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(level),
	})
	if err != nil {
		panic(err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	if cfg.MaxConn > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxConn)
	}
	if cfg.IdleConn > 0 {
		sqlDB.SetMaxIdleConns(cfg.IdleConn)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db
}

// checkSuper seeds the default operator account when none exists.
func (a *Application) checkSuper() {
	const superEmail = "admin@lowkey.local"
	const defaultPassword = "lowkey-operator"

	var operator domain.User
	err := a.gormDB.Where("email = ?", superEmail).First(&operator).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		hash, hashErr := bcrypt.GenerateFromPassword([]byte(defaultPassword), bcrypt.DefaultCost)
		if hashErr != nil {
			zap.L().Error("failed to hash default operator password", zap.Error(hashErr))
			return
		}
		if err := a.gormDB.Create(&domain.User{
			ID:        ids.Next(),
			Email:     superEmail,
			Password:  string(hash),
			Realname:  "administrator",
			Tier:      string(access.TierElite),
			Level:     domain.UserLevelAdmin,
			Status:    domain.ENABLED,
			Remark:    "super",
			LastLogin: time.Now(),
		}).Error; err != nil {
			zap.L().Error("failed to create default operator", zap.Error(err))
		} else {
			zap.L().Warn("initialized default operator account, change the password",
				zap.String("email", superEmail))
		}
	case err != nil:
		zap.L().Error("failed to query operator account", zap.Error(err))
	}
}

// checkTools seeds the tier-gated tool list once.
func (a *Application) checkTools() {
	defaultTools := []domain.Tool{
		{Name: "Market Intelligence", Description: "Curated market briefs for discreet acquisitions", AccessLevel: string(access.TierPremium)},
		{Name: "Wellness Concierge", Description: "Priority booking for retreats and practitioners", AccessLevel: string(access.TierPremium)},
		{Name: "Luxury Fleet", Description: "On-demand access to the partner vehicle fleet", AccessLevel: string(access.TierPremium)},
		{Name: "Lifestyle Planner", Description: "Dedicated planning for travel and events", AccessLevel: string(access.TierVip)},
		{Name: "Private Events", Description: "Invitations to closed-door member gatherings", AccessLevel: string(access.TierVip)},
		{Name: "Travel Elite", Description: "Global travel desk with airside handling", AccessLevel: string(access.TierVip)},
		{Name: "Investment Advisory", Description: "Introductions to private market advisors", AccessLevel: string(access.TierElite)},
		{Name: "Art Acquisition", Description: "Gallery and auction representation", AccessLevel: string(access.TierElite)},
	}

	for _, tool := range defaultTools {
		var count int64
		a.gormDB.Model(&domain.Tool{}).Where("name = ?", tool.Name).Count(&count)
		if count == 0 {
			tool.ID = ids.Next()
			tool.CreatedAt = time.Now()
			tool.UpdatedAt = time.Now()
			if err := a.gormDB.Create(&tool).Error; err != nil {
				zap.L().Error("failed to create default tool",
					zap.String("name", tool.Name), zap.Error(err))
			} else {
				zap.L().Info("initialized default tool", zap.String("name", tool.Name))
			}
		}
	}
}

// checkVaultItems seeds the keyholder vault.
func (a *Application) checkVaultItems() {
	defaultItems := []domain.VaultItem{
		{Code: "lk-doc-001", Name: "Protocol: Silent Expansion", Description: "Internal doctrine on scaling without spectacle.", URL: "#"},
		{Code: "lk-pack-ghost", Name: "Ghost Toolkit", Description: "A curated bundle of utilities for operating below the feed.", URL: "#"},
		{Code: "lk-key-ops", Name: "Keyholder Operations Manual", Description: "How to move as if nothing has changed, after everything has.", URL: "#"},
	}

	for _, item := range defaultItems {
		var count int64
		a.gormDB.Model(&domain.VaultItem{}).Where("code = ?", item.Code).Count(&count)
		if count == 0 {
			item.ID = ids.Next()
			item.CreatedAt = time.Now()
			item.UpdatedAt = time.Now()
			if err := a.gormDB.Create(&item).Error; err != nil {
				zap.L().Error("failed to create default vault item",
					zap.String("code", item.Code), zap.Error(err))
			} else {
				zap.L().Info("initialized default vault item", zap.String("code", item.Code))
			}
		}
	}
}
