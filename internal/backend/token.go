package backend

import "context"

type (
	tokenKey   struct{}
	subjectKey struct{}
)

// WithToken кладёт access-токен сессии в контекст запроса.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFrom извлекает access-токен из контекста.
func TokenFrom(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey{}).(string)
	return token, ok && token != ""
}

// WithSubject кладёт идентификатор пользователя (sub) в контекст.
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectKey{}, subject)
}

// SubjectFrom извлекает идентификатор пользователя из контекста.
func SubjectFrom(ctx context.Context) string {
	s, _ := ctx.Value(subjectKey{}).(string)
	return s
}
