package goroutine

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/avoronin/bidmarket-backend/internal/logger"
)

// SafeGo запускает горутину с обработкой panic. Используется для
// fire-and-forget побочных эффектов, которые не должны ронять запрос.
func SafeGo(fn func()) {
	go func() {
		defer recoverPanic()
		fn()
	}()
}

// SafeGoWithTimeout запускает горутину с собственным контекстом и дедлайном.
// Контекст намеренно не наследуется от запроса: эффект должен пережить ответ,
// но не висеть дольше timeout.
func SafeGoWithTimeout(timeout time.Duration, fn func(context.Context)) {
	go func() {
		defer recoverPanic()
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		fn(ctx)
	}()
}

func recoverPanic() {
	if r := recover(); r != nil {
		if logger.Log != nil {
			logger.Log.Errorf("panic в горутине: %v\nstack:\n%s", r, debug.Stack())
		}
	}
}
