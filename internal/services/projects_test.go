package services

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DevN0mad/JiraReportBot/internal/models"
)

func TestReconcileProjects(t *testing.T) {
	fetches := map[string]int{}

	mux := http.NewServeMux()
	mux.HandleFunc("/rest/api/3/project/", func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Path[len("/rest/api/3/project/"):]
		fetches[key]++

		w.Header().Set("Content-Type", "application/json")
		switch key {
		case "BBB":
			fmt.Fprint(w, `{"key": "BBB", "name": "Beta", "projectCategory": {"name": "Internal"}}`)
		case "AAA":
			fmt.Fprint(w, `{"key": "AAA", "name": "Alpha"}`)
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	})

	jira := newTestJira(t, mux)

	issues := []models.Issue{
		{Key: "BBB-1", ProjectKey: "BBB"},
		{Key: "AAA-1", ProjectKey: "AAA"},
		{Key: "BBB-2", ProjectKey: "BBB"},
	}

	projects, err := jira.ReconcileProjects(context.Background(), issues)
	require.NoError(t, err)
	require.Len(t, projects, 2)

	// Порядок первого появления ключа, метаданные запрошены один раз
	assert.Equal(t, "BBB", projects[0].Key)
	assert.Equal(t, "AAA", projects[1].Key)
	assert.Equal(t, map[string]int{"BBB": 1, "AAA": 1}, fetches)

	assert.Equal(t, "Beta", projects[0].Name)
	require.NotNil(t, projects[0].Category)
	assert.Equal(t, "Internal", *projects[0].Category)
	assert.Nil(t, projects[1].Category)

	require.Len(t, projects[0].Issues, 2)
	require.Len(t, projects[1].Issues, 1)
	for _, project := range projects {
		for _, issue := range project.Issues {
			assert.Empty(t, issue.ProjectKey, "project key is implicit in the parent")
		}
	}

	// Входной срез не изменяется
	assert.Equal(t, "BBB", issues[0].ProjectKey)
}

func TestReconcileProjectsFetchError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/rest/api/3/project/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	})

	jira := newTestJira(t, mux)

	_, err := jira.ReconcileProjects(context.Background(), []models.Issue{{Key: "X-1", ProjectKey: "X"}})
	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, http.StatusForbidden, remoteErr.Status)
}
