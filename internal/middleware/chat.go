package middleware

import (
	"fmt"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// PrivateOnly drops updates that do not come from a private chat
func PrivateOnly(logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			chat := c.Chat()
			if chat == nil || chat.Type != tele.ChatPrivate {
				fields := []zap.Field{}
				if chat != nil {
					fields = append(fields, zap.Int64("chat_id", chat.ID), zap.String("chat_type", string(chat.Type)))
				}
				logger.Debug("Ignoring update outside a private chat", fields...)
				return nil
			}
			return next(c)
		}
	}
}

// Recover turns a panic inside a handler into a logged error so the poller keeps running
func Recover(logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					var userID int64
					if c.Sender() != nil {
						userID = c.Sender().ID
					}
					logger.Error("Handler panicked",
						zap.Int64("user_id", userID),
						zap.Any("panic", r),
						zap.Stack("stack"),
					)
					err = fmt.Errorf("handler panic: %v", r)
				}
			}()
			return next(c)
		}
	}
}
