package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/b2world/ems-backend/internal/core/ports"
)

type OffboardingHandler struct {
	offboarding ports.OffboardingService
}

func NewOffboardingHandler(offboarding ports.OffboardingService) *OffboardingHandler {
	return &OffboardingHandler{offboarding: offboarding}
}

type resignRequest struct {
	ResignationDate string `json:"resignation_date"  validate:"required"`
	LastWorkingDate string `json:"last_working_date" validate:"required"`
	Reason          string `json:"reason"            validate:"max=1000"`
}

type clearanceRequest struct {
	HR      *bool `json:"hr"`
	IT      *bool `json:"it"`
	Finance *bool `json:"finance"`
	Manager *bool `json:"manager"`
}

// Resign starts the caller's offboarding.
//
// @Summary      Submit a resignation
// @Tags         offboarding
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      resignRequest  true  "Resignation"
// @Success      201   {object}  domain.Offboarding
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/offboarding/resign [post]
func (h *OffboardingHandler) Resign(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req resignRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	resigned, err := parseDate("resignation_date", req.ResignationDate)
	if err != nil {
		return err
	}
	last, err := parseDate("last_working_date", req.LastWorkingDate)
	if err != nil {
		return err
	}

	o, err := h.offboarding.Resign(c.Request().Context(), p.UserID, ports.ResignInput{
		ResignationDate: resigned,
		LastWorkingDate: last,
		Reason:          req.Reason,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, o)
}

// UpdateClearance records department sign-offs for a leaver.
//
// @Summary      Update clearance
// @Tags         offboarding
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path      string            true  "User id"
// @Param        body    body      clearanceRequest  true  "Flags to set"
// @Success      200     {object}  domain.Offboarding
// @Failure      404     {object}  errorResponse
// @Router       /api/offboarding/update-clearance/{userId} [put]
func (h *OffboardingHandler) UpdateClearance(c echo.Context) error {
	var req clearanceRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	o, err := h.offboarding.UpdateClearance(c.Request().Context(), c.Param("userId"), ports.ClearanceUpdate{
		HR:      req.HR,
		IT:      req.IT,
		Finance: req.Finance,
		Manager: req.Manager,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, o)
}

// ExperienceLetter streams the leaver's experience letter.
//
// @Summary      Experience letter
// @Tags         offboarding
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        userId  path  string  true  "User id"
// @Success      200     {file}    binary
// @Failure      404     {object}  errorResponse
// @Router       /api/offboarding/experience-letter/{userId} [get]
func (h *OffboardingHandler) ExperienceLetter(c echo.Context) error {
	return h.letter(c, ports.ExperienceLetter)
}

// RelievingLetter streams the leaver's relieving letter once clearance is complete.
//
// @Summary      Relieving letter
// @Tags         offboarding
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        userId  path  string  true  "User id"
// @Success      200     {file}    binary
// @Failure      404     {object}  errorResponse
// @Failure      409     {object}  errorResponse
// @Router       /api/offboarding/relieving-letter/{userId} [get]
func (h *OffboardingHandler) RelievingLetter(c echo.Context) error {
	return h.letter(c, ports.RelievingLetter)
}

func (h *OffboardingHandler) letter(c echo.Context, kind ports.LetterKind) error {
	l, err := h.offboarding.Letter(c.Request().Context(), c.Param("userId"), kind)
	if err != nil {
		return err
	}
	return attachment(c, l.FileName, l.Content)
}

// Status returns the offboarding record of a user.
//
// @Summary      Offboarding status
// @Tags         offboarding
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path      string  true  "User id"
// @Success      200     {object}  domain.Offboarding
// @Failure      403     {object}  errorResponse
// @Failure      404     {object}  errorResponse
// @Router       /api/offboarding/status/{userId} [get]
func (h *OffboardingHandler) Status(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	o, err := h.offboarding.Status(c.Request().Context(), p, c.Param("userId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, o)
}
