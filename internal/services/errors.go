package services

import "fmt"

// RemoteError ошибка неуспешного ответа Jira API.
// Несёт HTTP статус и тело ответа; вызывающий решает,
// прерывать ли весь запуск.
type RemoteError struct {
	Status int
	Body   string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("jira api status=%d body=%s", e.Status, e.Body)
}
