// Package contact はお問い合わせフォームの検証と受付を提供する。
// 送信内容は保存せず、ログに記録するだけで受付完了とする。
package contact

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hitoshi/carblog/internal/model"
)

// fieldMessages はフィールドとタグの組ごとのエラーメッセージ。
var fieldMessages = map[string]map[string]string{
	"name":    {"required": "Name is required"},
	"email":   {"required": "Email is required", "email": "Please enter a valid email address"},
	"subject": {"required": "Subject is required"},
	"message": {"required": "Message is required"},
}

// Service はお問い合わせの受付サービス。
type Service struct {
	validate *validator.Validate
	logger   *slog.Logger
}

// NewService はServiceの新しいインスタンスを生成する。
// バリデーションエラーのフィールド名にはJSONタグ名を使う。
func NewService(logger *slog.Logger) *Service {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Service{
		validate: v,
		logger:   logger,
	}
}

// Submit はお問い合わせ内容を検証して受け付ける。
// 前後の空白は取り除いてから検証する。
// 検証エラー時はフィールドごとのメッセージを持つ model.NewValidationError を返す。
func (s *Service) Submit(ctx context.Context, msg model.ContactMessage) error {
	msg = normalize(msg)

	if err := s.validate.StructCtx(ctx, msg); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		return model.NewValidationError(toFieldErrors(verrs))
	}

	s.logger.Info("contact message received",
		slog.String("subject", msg.Subject),
		slog.Int("message_length", len(msg.Message)),
	)
	return nil
}

func normalize(msg model.ContactMessage) model.ContactMessage {
	return model.ContactMessage{
		Name:    strings.TrimSpace(msg.Name),
		Email:   strings.TrimSpace(msg.Email),
		Subject: strings.TrimSpace(msg.Subject),
		Message: strings.TrimSpace(msg.Message),
	}
}

// toFieldErrors はフィールドごとに最初のエラーのメッセージを返す。
func toFieldErrors(verrs validator.ValidationErrors) map[string]string {
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if _, exists := fields[field]; exists {
			continue
		}
		msg, ok := fieldMessages[field][fe.Tag()]
		if !ok {
			msg = field + " is invalid"
		}
		fields[field] = msg
	}
	return fields
}
