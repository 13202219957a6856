package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/DevN0mad/JiraReportBot/internal/models"
)

// HistoryOpts параметры хранилища истории запусков.
type HistoryOpts struct {
	DBPath string `yaml:"dbPath" validate:"required"`
}

// RunStore хранит историю генераций отчетов в sqlite.
type RunStore struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewRunStore открывает базу и мигрирует таблицу запусков.
func NewRunStore(opts HistoryOpts, logger *slog.Logger) (*RunStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dir := filepath.Dir(opts.DBPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Error("failed to create db dir", "dir", dir, "error", err)
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(opts.DBPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		logger.Error("failed to open sqlite db", "path", opts.DBPath, "error", err)
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.AutoMigrate(&models.ReportRun{}); err != nil {
		logger.Error("failed to auto-migrate report run model", "error", err)
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	logger.Info("sqlite run history initialized", "path", opts.DBPath)

	return &RunStore{db: db, logger: logger}, nil
}

// SaveRun сохраняет итог одного запуска.
func (s *RunStore) SaveRun(ctx context.Context, run *models.ReportRun) error {
	db := s.db.WithContext(ctx)

	if err := db.Create(run).Error; err != nil {
		s.logger.Error("failed to save report run", "filename", run.Filename, "error", err)
		return fmt.Errorf("save report run: %w", err)
	}

	s.logger.Debug("report run saved", "id", run.ID, "status", run.Status, "filename", run.Filename)
	return nil
}

// ListRuns возвращает последние запуски, новые первыми.
func (s *RunStore) ListRuns(ctx context.Context, limit int) ([]models.ReportRun, error) {
	if limit <= 0 {
		limit = 20
	}
	db := s.db.WithContext(ctx)

	var runs []models.ReportRun
	if err := db.Order("created_at DESC, id DESC").Limit(limit).Find(&runs).Error; err != nil {
		s.logger.Error("failed to list report runs", "error", err)
		return nil, fmt.Errorf("list report runs: %w", err)
	}

	return runs, nil
}
