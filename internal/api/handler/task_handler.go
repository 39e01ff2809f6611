package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/b2world/ems-backend/internal/core/ports"
)

type TaskHandler struct {
	tasks ports.TaskService
}

func NewTaskHandler(tasks ports.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

type assignTaskRequest struct {
	EmployeeID  string `json:"employee_id" validate:"required,mongodb"`
	Title       string `json:"title"       validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Deadline    string `json:"deadline"`
}

type taskReportRequest struct {
	Progress string `json:"progress" validate:"required,max=2000"`
	Remarks  string `json:"remarks"  validate:"max=2000"`
}

type reviewTaskRequest struct {
	Remarks string `json:"remarks" validate:"max=2000"`
}

// Assign gives a task to an employee of the calling manager.
//
// @Summary      Assign a task
// @Tags         manager
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      assignTaskRequest  true  "Task"
// @Success      201   {object}  domain.Task
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /api/manager/assign-task [post]
func (h *TaskHandler) Assign(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req assignTaskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	deadline, err := parseOptionalDate("deadline", req.Deadline)
	if err != nil {
		return err
	}

	task, err := h.tasks.Assign(c.Request().Context(), p.UserID, ports.AssignTaskInput{
		EmployeeID:  req.EmployeeID,
		Title:       req.Title,
		Description: req.Description,
		Deadline:    deadline,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, task)
}

// Assigned lists the tasks the calling manager assigned.
//
// @Summary      Tasks assigned by me
// @Tags         manager
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Task
// @Router       /api/manager/tasks [get]
func (h *TaskHandler) Assigned(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	tasks, err := h.tasks.AssignedBy(c.Request().Context(), p.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tasks)
}

// Review closes a submitted task.
//
// @Summary      Review a task
// @Tags         manager
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Task id"
// @Param        body  body      reviewTaskRequest  true  "Review"
// @Success      200   {object}  domain.Task
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/manager/tasks/{id}/review [put]
func (h *TaskHandler) Review(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req reviewTaskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	task, err := h.tasks.Review(c.Request().Context(), p, c.Param("id"), req.Remarks)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

// Mine lists the caller's tasks.
//
// @Summary      My tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Task
// @Router       /api/tasks/mine [get]
func (h *TaskHandler) Mine(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	tasks, err := h.tasks.Mine(c.Request().Context(), p.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tasks)
}

// Report submits progress on one of the caller's tasks.
//
// @Summary      Submit a task report
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Task id"
// @Param        body  body      taskReportRequest  true  "Report"
// @Success      200   {object}  domain.Task
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/tasks/{id}/report [post]
func (h *TaskHandler) Report(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req taskReportRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	task, err := h.tasks.SubmitReport(c.Request().Context(), p.UserID, c.Param("id"), req.Progress, req.Remarks)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}
