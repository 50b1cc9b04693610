package handler

import (
	"reflect"
	"strings"

	"github.com/formasuite/trainerdesk/internal/core/domain"
	"github.com/formasuite/trainerdesk/internal/core/ports"
)

type userResponse struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	DisplayName string `json:"display_name"`
}

type stateResponse struct {
	IsAuthenticated bool          `json:"is_authenticated"`
	Role            string        `json:"role"`
	User            *userResponse `json:"user,omitempty"`
}

func toStateResponse(s domain.AuthState) stateResponse {
	resp := stateResponse{
		IsAuthenticated: s.IsAuthenticated,
		Role:            string(s.Role),
	}
	if s.CurrentUser != nil {
		resp.User = &userResponse{
			ID:          s.CurrentUser.ID,
			Email:       s.CurrentUser.Email,
			Role:        string(domain.ParseRole(s.CurrentUser.Role)),
			DisplayName: s.CurrentUser.DisplayName(),
		}
	}
	return resp
}

// extrasFor reads the entry for kind/id through the matching typed accessor.
func extrasFor(svc ports.ExtrasService, kind domain.EntityKind, id int64) (any, bool) {
	switch kind {
	case domain.KindClient:
		return svc.Client(id)
	case domain.KindFormateur:
		return svc.Formateur(id)
	case domain.KindSession:
		return svc.Session(id)
	}
	return nil, false
}

// jsonFieldName reports struct fields by their JSON name in validation errors.
func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}
