package services

// Защита от бесконечного цикла пагинации.
const maxPages = 1000

// FetchOffsetPages собирает все элементы ресурса со страничной
// выборкой startAt/maxResults. Останавливается, когда страница
// короче запрошенного размера.
func FetchOffsetPages[T any](pageSize int, fetch func(startAt, maxResults int) ([]T, error)) ([]T, error) {
	var all []T
	startAt := 0
	for page := 0; page < maxPages; page++ {
		batch, err := fetch(startAt, pageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < pageSize {
			break
		}
		startAt += pageSize
	}
	return all, nil
}

// FetchTokenPages собирает все элементы ресурса с токеном продолжения.
// Останавливается, когда ответ не содержит следующий токен.
func FetchTokenPages[T any](fetch func(token string) ([]T, string, error)) ([]T, error) {
	var all []T
	token := ""
	for page := 0; page < maxPages; page++ {
		batch, next, err := fetch(token)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if next == "" {
			break
		}
		token = next
	}
	return all, nil
}
