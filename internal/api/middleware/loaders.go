package middleware

import (
	"net/http"

	"github.com/zatekoja/businesstrust/backend/internal/adapters/loaders"
	"github.com/zatekoja/businesstrust/backend/internal/domain/repositories"
)

// Loaders attaches a fresh set of batch loaders to every request
func Loaders(users repositories.UserRepository, companies repositories.CompanyRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ldrs := loaders.NewLoaders(users, companies)
			next.ServeHTTP(w, r.WithContext(loaders.WithLoaders(r.Context(), ldrs)))
		})
	}
}
