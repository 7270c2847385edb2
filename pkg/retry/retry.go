package retry

import (
	"time"

	"github.com/labstack/gommon/log"
)

const (
	maxRetries        = 4
	retryInitialDelay = time.Millisecond * 100
	// Задержки при maxRetries = 4: 100ms, 200ms, 400ms, 800ms, потом завершение
)

// Retry выполняет операцию с экспоненциальной задержкой между попытками.
// Возвращает nil при успехе или последнюю ошибку, если все попытки исчерпаны
func Retry(operation func() error) error {
	delay := retryInitialDelay
	for attempt := 0; ; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}
		if attempt >= maxRetries {
			return err
		}
		log.Errorf("error during retry %d: %v", attempt, err)
		time.Sleep(delay)
		delay *= 2
	}
}
