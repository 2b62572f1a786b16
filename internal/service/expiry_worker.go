package service

import (
	"context"
	"log"
	"time"
)

// ExpiryWorker периодически помечает истекшими активные сессии,
// превысившие свой лимит времени
type ExpiryWorker struct {
	sessionSvc *SessionService
	interval   time.Duration
}

// NewExpiryWorker создает воркер с заданным интервалом обхода
func NewExpiryWorker(sessionSvc *SessionService, interval time.Duration) *ExpiryWorker {
	return &ExpiryWorker{
		sessionSvc: sessionSvc,
		interval:   interval,
	}
}

// Run запускает цикл обхода и блокируется до отмены контекста.
// Предназначен для запуска в отдельной горутине.
func (w *ExpiryWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log.Printf("[ExpiryWorker] Запущен, интервал обхода %s", w.interval)

	for {
		select {
		case <-ctx.Done():
			log.Println("[ExpiryWorker] Остановлен")
			return
		case now := <-ticker.C:
			expired, err := w.sessionSvc.ExpireOverdueSessions(now.UTC())
			if err != nil {
				log.Printf("[ExpiryWorker] Ошибка обхода истекших сессий: %v", err)
				continue
			}
			if expired > 0 {
				log.Printf("[ExpiryWorker] Помечено истекшими сессий: %d", expired)
			}
		}
	}
}
