package api

import (
	"database/sql"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/prepwise/server/domain/entities"
	"github.com/prepwise/server/internal/auth"
	"github.com/prepwise/server/internal/websocket"
	"github.com/prepwise/server/usecase"
)

// InitRoutes initializes all API routes
func InitRoutes(e *echo.Echo, hub *websocket.Hub, svc *usecase.InterviewService, authManager *auth.Manager, logger *zap.Logger) {
	h := &handler{svc: svc, auth: authManager, hub: hub, logger: logger}

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "prepwise-server",
		})
	})

	// User Management APIs. Identity lives with the upstream provider; these
	// endpoints only mint HS256 tokens for a known user ID.
	e.POST("/api/v1/users/register", h.userRegister)
	e.POST("/api/v1/users/login", h.userLogin)

	// API v1 routes behind JWT auth
	v1 := e.Group("/api/v1", JWTMiddleware(authManager, logger))

	v1.POST("/interviews", h.createInterview)
	v1.GET("/interviews", h.listInterviews)
	v1.DELETE("/interviews/:id", h.deleteInterview)
	v1.POST("/interviews/:id/question", h.nextQuestion)
	v1.POST("/interviews/:id/evaluate", h.evaluateAnswer)
	v1.POST("/answers", h.saveAnswer)
	v1.GET("/progress", h.progress)

	// WebSocket voice room with JWT validation
	e.GET("/ws/interview/:id", h.voiceRoom, JWTMiddleware(authManager, logger))
}

type handler struct {
	svc    *usecase.InterviewService
	auth   *auth.Manager
	hub    *websocket.Hub
	logger *zap.Logger
}

func (h *handler) userRegister(c echo.Context) error {
	id := uuid.NewString()
	token, err := h.auth.GenerateUserToken(id)
	if err != nil {
		h.logger.Error("Failed to generate user token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "token_generation_failed",
			Message: "Failed to generate authentication token",
		})
	}
	return c.JSON(http.StatusOK, TokenResponse{Token: token, UserID: id})
}

func (h *handler) userLogin(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil || req.UserID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "user_id is required",
		})
	}

	token, err := h.auth.GenerateUserToken(req.UserID)
	if err != nil {
		h.logger.Error("Failed to generate user token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "token_generation_failed",
			Message: "Failed to generate authentication token",
		})
	}
	return c.JSON(http.StatusOK, TokenResponse{Token: token, UserID: req.UserID})
}

// createInterview accepts the multipart setup form: role, difficulty, type,
// and an optional resume file.
func (h *handler) createInterview(c echo.Context) error {
	input := usecase.CreateInterviewInput{
		Role:       c.FormValue("role"),
		Difficulty: c.FormValue("difficulty"),
		Type:       c.FormValue("type"),
	}

	if file, err := c.FormFile("resume"); err == nil && file != nil {
		src, err := file.Open()
		if err != nil {
			h.logger.Warn("Failed to open resume upload", zap.Error(err))
		} else {
			data, readErr := io.ReadAll(src)
			_ = src.Close()
			if readErr != nil {
				h.logger.Warn("Failed to read resume upload", zap.Error(readErr))
			} else {
				input.Resume = &usecase.ResumeUpload{
					FileName:    file.Filename,
					ContentType: file.Header.Get("Content-Type"),
					Data:        data,
				}
			}
		}
	}

	interview, err := h.svc.CreateInterview(c.Request().Context(), userID(c), input)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
	}
	return c.JSON(http.StatusCreated, interview)
}

func (h *handler) listInterviews(c echo.Context) error {
	interviews, err := h.svc.ListInterviews(c.Request().Context(), userID(c))
	if err != nil {
		h.logger.Error("Failed to list interviews", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal_error"})
	}
	if interviews == nil {
		interviews = []*entities.Interview{}
	}
	return c.JSON(http.StatusOK, interviews)
}

func (h *handler) deleteInterview(c echo.Context) error {
	err := h.svc.DeleteInterview(c.Request().Context(), c.Param("id"), userID(c))
	if errors.Is(err, sql.ErrNoRows) {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not_found"})
	}
	if err != nil {
		h.logger.Error("Failed to delete interview", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal_error"})
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handler) nextQuestion(c echo.Context) error {
	question, err := h.svc.NextQuestion(c.Request().Context(), c.Param("id"), userID(c))
	if errors.Is(err, sql.ErrNoRows) {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not_found"})
	}
	if err != nil {
		h.logger.Error("Failed to generate question", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal_error"})
	}
	return c.JSON(http.StatusOK, QuestionResponse{Question: question})
}

func (h *handler) evaluateAnswer(c echo.Context) error {
	var req EvaluateRequest
	if err := c.Bind(&req); err != nil || req.Question == "" || req.Answer == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "question and answer are required",
		})
	}

	feedback, err := h.svc.EvaluateAnswer(c.Request().Context(), c.Param("id"), userID(c), req.Question, req.Answer)
	if err != nil {
		h.logger.Error("Failed to evaluate answer", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal_error"})
	}
	return c.JSON(http.StatusOK, feedback)
}

func (h *handler) saveAnswer(c echo.Context) error {
	var req AnswerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_request"})
	}

	err := h.svc.SaveAnswer(c.Request().Context(), &entities.Answer{
		InterviewID: req.InterviewID,
		UserID:      userID(c),
		Question:    req.Question,
		Answer:      req.Answer,
		Score:       req.Score,
		Feedback:    req.Feedback,
	})
	if err != nil {
		h.logger.Error("Failed to save answer", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Save failed"})
	}
	return c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

func (h *handler) progress(c echo.Context) error {
	answers, err := h.svc.Progress(c.Request().Context(), userID(c))
	if err != nil {
		h.logger.Error("Failed to load progress", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal_error"})
	}
	if answers == nil {
		answers = []*entities.Answer{}
	}
	return c.JSON(http.StatusOK, answers)
}

// voiceRoom upgrades to a websocket and hands the connection to the voice
// interview hub. The interview must exist and belong to the caller.
func (h *handler) voiceRoom(c echo.Context) error {
	uid := userID(c)
	interviewID := c.Param("id")

	if _, err := h.svc.GetInterview(c.Request().Context(), interviewID, uid); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not_found"})
		}
		h.logger.Error("Failed to load interview for voice room", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal_error"})
	}

	h.logger.Info("Voice room connection authenticated",
		zap.String("user_id", uid),
		zap.String("interview_id", interviewID))

	return websocket.ServeVoiceRoom(h.hub, c, uid, interviewID)
}
