package validators

import (
	"net/http"
	"strings"

	pkgerrors "github.com/angelmondragon/promotion-manager/pkg/errors"
)

// BearerToken extracts the token from an Authorization header.
func BearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing authorization header")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid authorization header")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid authorization header")
	}
	return token, nil
}
