package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/b2world/ems-backend/internal/core/ports"
)

type TrainingHandler struct {
	training ports.TrainingService
}

func NewTrainingHandler(training ports.TrainingService) *TrainingHandler {
	return &TrainingHandler{training: training}
}

type createTrainingRequest struct {
	Title          string   `json:"title"           validate:"required,max=200"`
	Description    string   `json:"description"     validate:"max=2000"`
	TargetAudience []string `json:"target_audience" validate:"required,min=1,dive,oneof=admin manager employee intern"`
	StartDate      string   `json:"start_date"      validate:"required"`
	EndDate        string   `json:"end_date"        validate:"required"`
}

// Create offers a new course; the caller becomes the trainer.
//
// @Summary      Create a training
// @Tags         training
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTrainingRequest  true  "Training"
// @Success      201   {object}  domain.Training
// @Failure      400   {object}  errorResponse
// @Router       /api/training/create [post]
func (h *TrainingHandler) Create(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req createTrainingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		return err
	}
	end, err := parseDate("end_date", req.EndDate)
	if err != nil {
		return err
	}

	t, err := h.training.Create(c.Request().Context(), p.UserID, ports.CreateTrainingInput{
		Title:          req.Title,
		Description:    req.Description,
		TargetAudience: req.TargetAudience,
		StartDate:      start,
		EndDate:        end,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, t)
}

// MyCourses lists the courses offered to the caller's role.
//
// @Summary      My courses
// @Tags         training
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Training
// @Router       /api/training/my-courses [get]
func (h *TrainingHandler) MyCourses(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	list, err := h.training.ForRole(c.Request().Context(), p.Role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// Complete marks a course completed by the caller.
//
// @Summary      Complete a training
// @Tags         training
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Training id"
// @Success      200  {object}  domain.Training
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /api/training/complete/{id} [post]
func (h *TrainingHandler) Complete(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	t, err := h.training.Complete(c.Request().Context(), c.Param("id"), p.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, t)
}
