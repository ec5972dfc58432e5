package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/mmeshcher/parcel-portal/internal/i18n"
)

const localeKey contextKey = "locale"

const localeCookieTTL = 365 * 24 * time.Hour

// Locale определяет язык запроса и сохраняет его в cookie, чтобы следующие
// запросы без языка в пути получали тот же язык.
func Locale(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := i18n.Resolve(r)

		if c, err := r.Cookie(i18n.CookieName); err != nil || c.Value != lang {
			http.SetCookie(w, &http.Cookie{
				Name:     i18n.CookieName,
				Value:    lang,
				Path:     "/",
				Expires:  time.Now().Add(localeCookieTTL),
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), localeKey, lang)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// LocaleFromContext возвращает язык запроса или язык по умолчанию.
func LocaleFromContext(ctx context.Context) string {
	if lang, ok := ctx.Value(localeKey).(string); ok {
		return lang
	}
	return i18n.Default
}
