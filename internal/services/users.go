package services

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/DevN0mad/JiraReportBot/internal/models"
)

// TaxonomyCategory ось классификации: упорядоченный список
// распознаваемых имен групп и имя колонки отчета.
type TaxonomyCategory struct {
	Category string   `yaml:"category" validate:"required"`
	Column   string   `yaml:"column" validate:"required"`
	Groups   []string `yaml:"groups" validate:"required,min=1"`
}

// Resolver сопоставляет пользователя меткам таксономии по его группам.
// Кэш живет один запуск отчета: новый Resolver создается на каждую
// генерацию и никогда не разделяется между запусками.
type Resolver struct {
	jira     *JiraService
	taxonomy []TaxonomyCategory
	cache    map[string]models.UserLabel
	logger   *slog.Logger
}

// NewResolver создает резолвер с пустым кэшем.
func NewResolver(jira *JiraService, taxonomy []TaxonomyCategory, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		jira:     jira,
		taxonomy: taxonomy,
		cache:    make(map[string]models.UserLabel),
		logger:   logger,
	}
}

// Resolve возвращает метки пользователя, при необходимости запрашивая
// его группы. Внутри категории побеждает ПОСЛЕДНЕЕ распознанное имя
// в порядке списка. Неудачный запрос пропускается с записью в лог
// и кэшируется пустой результат.
func (r *Resolver) Resolve(ctx context.Context, userID string) models.UserLabel {
	if label, ok := r.cache[userID]; ok {
		return label
	}

	label := models.UserLabel{UserID: userID, Labels: make(map[string]string)}

	raw, err := r.jira.UserGroups(ctx, userID)
	if err != nil {
		r.logger.Warn("Failed to fetch user groups", "user_id", userID, "error", err)
		r.cache[userID] = label
		return label
	}

	if raw.Groups == nil || len(raw.Groups.Items) == 0 {
		r.logger.Warn("No groups found for user", "user_id", userID)
		r.cache[userID] = label
		return label
	}

	member := make(map[string]struct{}, len(raw.Groups.Items))
	for _, g := range raw.Groups.Items {
		member[g.Name] = struct{}{}
	}

	for _, cat := range r.taxonomy {
		for _, name := range cat.Groups {
			if _, ok := member[name]; ok {
				label.Labels[cat.Category] = name
			}
		}
	}

	r.cache[userID] = label
	return label
}

// UserGroups получает пользователя с раскрытыми группами.
func (s *JiraService) UserGroups(ctx context.Context, userID string) (*models.RawUser, error) {
	query := url.Values{}
	query.Set("accountId", userID)
	query.Set("expand", "groups,applicationRoles")

	var raw models.RawUser
	if err := s.getJSON(ctx, s.apiURL("/rest/api/3/user"), query, &raw); err != nil {
		return nil, err
	}
	return &raw, nil
}
