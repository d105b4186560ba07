package database

import (
	"fmt"

	"smsledger/config"
	"smsledger/models"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Open 按配置打开数据库连接（mysql 或 sqlite）
func Open(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.Database.SQLitePath)
	case "mysql", "":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=%s&parseTime=True&loc=Local",
			cfg.Database.Username,
			cfg.Database.Password,
			cfg.Database.Host,
			cfg.Database.Port,
			cfg.Database.DBName,
			cfg.Database.Charset,
		)
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("不支持的数据库驱动: %s", cfg.Database.Driver)
	}

	logLevel := logger.Info
	if cfg.Server.Mode == "release" {
		logLevel = logger.Warn
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	return db, nil
}

// Init 初始化全局数据库连接并完成迁移
func Init(cfg *config.Config) error {
	db, err := Open(cfg)
	if err != nil {
		return err
	}
	if err := Migrate(db); err != nil {
		return err
	}
	DB = db
	log.Info().Str("driver", cfg.Database.Driver).Msg("数据库初始化成功")
	return nil
}

// Migrate 自动迁移表结构并写入预置分类
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.AiPendingItem{},
		&models.Transaction{},
	); err != nil {
		return fmt.Errorf("迁移数据表失败: %w", err)
	}
	return SeedCategories(db)
}

// SeedCategories 按 名称+类型 upsert 预置分类
func SeedCategories(db *gorm.DB) error {
	cats := models.DefaultCategories()
	for i := range cats {
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}, {Name: "type"}},
			DoUpdates: clause.AssignmentColumns([]string{"icon", "color_class", "sort_order"}),
		}).Create(&cats[i]).Error
		if err != nil {
			return fmt.Errorf("初始化分类失败: %w", err)
		}
	}
	return nil
}

// GetDB 获取数据库连接
func GetDB() *gorm.DB {
	return DB
}
