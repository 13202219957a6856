package services

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramOpts параметры необходимые для инициализации сервиса TelegramBotService.
type TelegramOpts struct {
	Token  string `yaml:"token" validate:"required"`
	ChatID int64  `yaml:"chatID" validate:"required"`
}

// TelegramBotService сервис предназначенный для взаимодействия с telegram.
type TelegramBotService struct {
	opts   TelegramOpts
	logger *slog.Logger
	bot    *tgbotapi.BotAPI
}

// NewTelegramBot создает экземпляр сервиса для работы с telegram ботом.
func NewTelegramBot(opts TelegramOpts, logger *slog.Logger) (*TelegramBotService, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if opts.Token == "" {
		return nil, fmt.Errorf("telegram bot token is required")
	}

	if opts.ChatID == 0 {
		return nil, fmt.Errorf("telegram chat id is required")
	}

	bot, err := tgbotapi.NewBotAPI(opts.Token)
	if err != nil {
		logger.Error("Failed to create Telegram bot", "error", err)
		return nil, fmt.Errorf("create Telegram bot: %w", err)
	}

	logger.Info("Telegram bot created successfully",
		"bot_user", bot.Self.UserName,
		"chat_id", opts.ChatID,
	)
	return &TelegramBotService{
		opts:   opts,
		logger: logger,
		bot:    bot,
	}, nil
}

// SendMessage отправляет текстовое сообщение в настроенный чат.
func (s *TelegramBotService) SendMessage(ctx context.Context, text string) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	msg := tgbotapi.NewMessage(s.opts.ChatID, text)
	if _, err := s.bot.Send(msg); err != nil {
		s.logger.Error("Failed to send message",
			"chat_id", s.opts.ChatID,
			"error", err)
		return fmt.Errorf("send message: %w", err)
	}

	s.logger.Info("Message sent successfully", "chat_id", s.opts.ChatID)
	return nil
}

// NotifyReport отправляет уведомление о готовом отчете.
func (s *TelegramBotService) NotifyReport(ctx context.Context, result *ReportResult) error {
	text := fmt.Sprintf("Report generated: %s (%d rows)", result.Filename, result.RowCount)
	return s.SendMessage(ctx, text)
}
