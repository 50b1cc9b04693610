package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/formasuite/trainerdesk/internal/core/domain"
	"github.com/formasuite/trainerdesk/internal/core/ports"
)

type ExtrasHandler struct {
	extras ports.ExtrasService
}

func NewExtrasHandler(extras ports.ExtrasService) *ExtrasHandler {
	return &ExtrasHandler{extras: extras}
}

type clientExtrasRequest struct {
	NumeroTva        *string `json:"numeroTva" validate:"omitempty,max=32"`
	Siret            *string `json:"siret" validate:"omitempty,numeric,len=14"`
	EmailFacturation *string `json:"emailFacturation" validate:"omitempty,email"`
}

type formateurExtrasRequest struct {
	SousTraitant *bool   `json:"sousTraitant"`
	NumeroTva    *string `json:"numeroTva" validate:"omitempty,max=32"`
	Siret        *string `json:"siret" validate:"omitempty,numeric,len=14"`
}

type sessionExtrasRequest struct {
	Modalite           *string  `json:"modalite" validate:"omitempty,oneof=presentiel distanciel mixte"`
	TarifClient        *float64 `json:"tarifClient" validate:"omitempty,gte=0"`
	TarifSousTraitance *float64 `json:"tarifSousTraitance" validate:"omitempty,gte=0"`
	FraisRefactures    *float64 `json:"fraisRefactures" validate:"omitempty,gte=0"`
}

// Get returns the extras stored for one entity.
//
// @Summary      Read extras
// @Tags         extras
// @Produce      json
// @Param        kind  path      string  true  "client, formateur or session"
// @Param        id    path      int     true  "Entity id"
// @Success      200   {object}  map[string]any
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /extras/{kind}/{id} [get]
func (h *ExtrasHandler) Get(c echo.Context) error {
	kind, id, err := extrasTarget(c)
	if err != nil {
		return err
	}

	v, ok := extrasFor(h.extras, kind, id)
	if !ok {
		return domain.ErrExtrasNotFound
	}
	return c.JSON(http.StatusOK, v)
}

// Put replaces the extras of one entity. Fields left out are cleared.
//
// @Summary      Replace extras
// @Tags         extras
// @Accept       json
// @Produce      json
// @Param        kind  path      string  true  "client, formateur or session"
// @Param        id    path      int     true  "Entity id"
// @Success      200   {object}  map[string]any
// @Failure      400   {object}  map[string]string
// @Router       /extras/{kind}/{id} [put]
func (h *ExtrasHandler) Put(c echo.Context) error {
	kind, id, err := extrasTarget(c)
	if err != nil {
		return err
	}

	switch kind {
	case domain.KindClient:
		var req clientExtrasRequest
		if err := bindAndValidate(c, &req); err != nil {
			return err
		}
		h.extras.SetClient(id, &domain.ClientExtras{
			NumeroTva:        req.NumeroTva,
			Siret:            req.Siret,
			EmailFacturation: req.EmailFacturation,
		})
	case domain.KindFormateur:
		var req formateurExtrasRequest
		if err := bindAndValidate(c, &req); err != nil {
			return err
		}
		h.extras.SetFormateur(id, &domain.FormateurExtras{
			SousTraitant: req.SousTraitant,
			NumeroTva:    req.NumeroTva,
			Siret:        req.Siret,
		})
	case domain.KindSession:
		var req sessionExtrasRequest
		if err := bindAndValidate(c, &req); err != nil {
			return err
		}
		h.extras.SetSession(id, &domain.SessionExtras{
			Modalite:           req.Modalite,
			TarifClient:        req.TarifClient,
			TarifSousTraitance: req.TarifSousTraitance,
			FraisRefactures:    req.FraisRefactures,
		})
	}

	v, _ := extrasFor(h.extras, kind, id)
	return c.JSON(http.StatusOK, v)
}

// Delete removes the extras of one entity. Removing nothing is not an error.
//
// @Summary      Remove extras
// @Tags         extras
// @Param        kind  path  string  true  "client, formateur or session"
// @Param        id    path  int     true  "Entity id"
// @Success      204
// @Failure      400   {object}  map[string]string
// @Router       /extras/{kind}/{id} [delete]
func (h *ExtrasHandler) Delete(c echo.Context) error {
	kind, id, err := extrasTarget(c)
	if err != nil {
		return err
	}

	switch kind {
	case domain.KindClient:
		h.extras.SetClient(id, nil)
	case domain.KindFormateur:
		h.extras.SetFormateur(id, nil)
	case domain.KindSession:
		h.extras.SetSession(id, nil)
	}
	return c.NoContent(http.StatusNoContent)
}

// Flush waits for pending extras writes.
//
// @Summary      Flush extras to storage
// @Tags         extras
// @Produce      json
// @Success      200   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /extras/flush [post]
func (h *ExtrasHandler) Flush(c echo.Context) error {
	if err := h.extras.Flush(c.Request().Context()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "flushed"})
}

func extrasTarget(c echo.Context) (domain.EntityKind, int64, error) {
	kind, err := domain.ParseEntityKind(c.Param("kind"))
	if err != nil {
		return "", 0, err
	}
	id, err := domain.ParseEntityID(c.Param("id"))
	if err != nil {
		return "", 0, err
	}
	return kind, id, nil
}

func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
