package auth

import (
	"net/http"

	"coursemarket/internal/models"
)

// RequireAccountType rejects authenticated callers whose account type is not one of types. It
// must run after RequireAuth.
func RequireAccountType(types ...models.AccountType) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := GetUserFromRequest(r)
			if err != nil {
				rejectRequest(w, r, http.StatusUnauthorized, err.Error())
				return
			}

			for _, t := range types {
				if user.AccountType == t {
					next.ServeHTTP(w, r)
					return
				}
			}
			rejectRequest(w, r, http.StatusForbidden, "This is a protected route for "+string(types[0])+"s")
		})
	}
}
