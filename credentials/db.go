package credentials

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// =============================================================================
// 🗄️ 数据库密钥存储
// =============================================================================

// ProviderSecret 后端密钥记录
type ProviderSecret struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Service   string    `gorm:"size:50;not null;uniqueIndex" json:"service"`
	Secret    string    `gorm:"size:500;not null" json:"-"`
	Enabled   bool      `gorm:"default:true" json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定表名
func (ProviderSecret) TableName() string {
	return "provider_secrets"
}

// Transactor 执行写事务。*database.PoolManager 以带重试的方式实现它。
type Transactor interface {
	WithTransactionRetry(ctx context.Context, attempts int, fn func(tx *gorm.DB) error) error
}

// writeAttempts 单次写入的最大事务尝试次数
const writeAttempts = 3

// DBStore 基于 GORM 的密钥存储
type DBStore struct {
	db     *gorm.DB
	tx     Transactor
	logger *zap.Logger
}

// DBStoreOption 配置 DBStore
type DBStoreOption func(*DBStore)

// WithTransactor 指定写事务执行者，默认直接在 db 上开启单次事务
func WithTransactor(tx Transactor) DBStoreOption {
	return func(s *DBStore) {
		if tx != nil {
			s.tx = tx
		}
	}
}

// NewDBStore 创建数据库密钥存储
func NewDBStore(db *gorm.DB, logger *zap.Logger, opts ...DBStoreOption) (*DBStore, error) {
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &DBStore{
		db:     db,
		tx:     singleTx{db: db},
		logger: logger.With(zap.String("component", "secret_store"), zap.String("backend", "database")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// singleTx 不重试的事务执行者
type singleTx struct{ db *gorm.DB }

func (t singleTx) WithTransactionRetry(ctx context.Context, _ int, fn func(tx *gorm.DB) error) error {
	return t.db.WithContext(ctx).Transaction(fn)
}

// Migrate 自动迁移 provider_secrets 表
func (s *DBStore) Migrate() error {
	if err := s.db.AutoMigrate(&ProviderSecret{}); err != nil {
		return fmt.Errorf("failed to auto migrate: %w", err)
	}
	return nil
}

// Resolve 实现 Resolver。禁用的记录视为缺失。
func (s *DBStore) Resolve(ctx context.Context, service string) (string, bool) {
	var rec ProviderSecret
	err := s.db.WithContext(ctx).
		Where("service = ? AND enabled = ?", service, true).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false
	}
	if err != nil {
		s.logger.Warn("secret lookup failed", zap.String("service", service), zap.Error(err))
		return "", false
	}

	v := strings.TrimSpace(rec.Secret)
	return v, v != ""
}

// Put 写入或更新密钥，并重新启用该记录
func (s *DBStore) Put(ctx context.Context, service, secret string) error {
	if !IsKnownService(service) {
		return fmt.Errorf("unknown service %q", service)
	}

	rec := ProviderSecret{Service: service, Secret: secret, Enabled: true}
	err := s.tx.WithTransactionRetry(ctx, writeAttempts, func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "service"}},
			DoUpdates: clause.AssignmentColumns([]string{"secret", "enabled", "updated_at"}),
		}).Create(&rec).Error
	})
	if err != nil {
		return fmt.Errorf("secret put failed: %w", err)
	}

	s.logger.Info("secret stored", zap.String("service", service), zap.String("secret", Mask(secret)))
	return nil
}

// ErrSecretNotStored 要禁用的服务没有存储记录
var ErrSecretNotStored = errors.New("no secret stored")

// Disable 禁用密钥，保留记录
func (s *DBStore) Disable(ctx context.Context, service string) error {
	err := s.tx.WithTransactionRetry(ctx, writeAttempts, func(tx *gorm.DB) error {
		res := tx.Model(&ProviderSecret{}).
			Where("service = ?", service).
			Update("enabled", false)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w for service %q", ErrSecretNotStored, service)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("secret disable failed: %w", err)
	}

	s.logger.Info("secret disabled", zap.String("service", service))
	return nil
}

// Name 实现 handlers.HealthCheck
func (s *DBStore) Name() string {
	return "secrets_database"
}

// Check 实现 handlers.HealthCheck
func (s *DBStore) Check(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
