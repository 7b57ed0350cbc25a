package controllers

import (
	"net/http"
	"strings"

	pkgerrors "github.com/angelmondragon/promotion-manager/pkg/errors"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func uuidParam(r *http.Request, name, label string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, label+" id is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+label+" id")
	}
	return id, nil
}

func serviceUnavailable(name string) error {
	return pkgerrors.New(pkgerrors.CodeInternal, name+" service unavailable")
}
