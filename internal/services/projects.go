package services

import (
	"context"
	"fmt"
	"net/url"

	"github.com/DevN0mad/JiraReportBot/internal/models"
)

// ProjectByKey получает метаданные проекта по его ключу.
func (s *JiraService) ProjectByKey(ctx context.Context, projectKey string) (models.Project, error) {
	if projectKey == "" {
		return models.Project{}, fmt.Errorf("empty project key")
	}

	var raw models.RawProject
	path := "/rest/api/3/project/" + url.PathEscape(projectKey)
	if err := s.getJSON(ctx, s.apiURL(path), nil, &raw); err != nil {
		return models.Project{}, err
	}

	project := models.Project{Key: raw.Key, Name: raw.Name}
	if raw.ProjectCategory != nil {
		category := raw.ProjectCategory.Name
		project.Category = &category
	}
	return project, nil
}

// ReconcileProjects группирует задачи по ключу проекта и один раз
// запрашивает метаданные каждого проекта. Порядок проектов повторяет
// порядок первого появления ключа среди задач; ключ проекта внутри
// задачи обнуляется, он теперь подразумевается родителем.
func (s *JiraService) ReconcileProjects(ctx context.Context, issues []models.Issue) ([]models.Project, error) {
	var order []string
	grouped := make(map[string][]models.Issue)

	for _, issue := range issues {
		key := issue.ProjectKey
		if _, ok := grouped[key]; !ok {
			order = append(order, key)
		}
		issue.ProjectKey = ""
		grouped[key] = append(grouped[key], issue)
	}

	projects := make([]models.Project, 0, len(order))
	for _, key := range order {
		project, err := s.ProjectByKey(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("fetch project %s: %w", key, err)
		}
		project.Issues = grouped[key]
		projects = append(projects, project)
		s.logger.Debug("Project reconciled", "project_key", key, "issues", len(grouped[key]))
	}

	s.logger.Info("Projects reconciled", "projects", len(projects), "issues", len(issues))
	return projects, nil
}
