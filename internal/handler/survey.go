package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"kakao-store-bot/internal/service/survey"
)

type SurveyHandler struct {
	survey *survey.Service
	logger *zap.Logger
}

func (h *SurveyHandler) Register(w http.ResponseWriter, r *http.Request) {
	var sub survey.Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"status":  "error",
			"message": err.Error(),
		})
		return
	}

	if err := h.survey.Register(r.Context(), sub); err != nil {
		h.logger.Error("store registration failed",
			zap.String("survey_id", sub.SurveyID),
			zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"status":  "error",
			"message": "상점 정보 저장 실패",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "success",
		"message":   "상점 정보가 성공적으로 저장되었습니다.",
		"survey_id": sub.SurveyID,
	})
}

func (h *SurveyHandler) GetStore(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	rec, err := h.survey.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("store lookup failed", zap.String("survey_id", id), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"status":  "error",
			"message": err.Error(),
		})
		return
	}

	if rec == nil {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"status":  "error",
			"message": "상점을 찾을 수 없습니다.",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"data":   rec,
	})
}

func NewSurveyHandler(survey *survey.Service, logger *zap.Logger) *SurveyHandler {
	return &SurveyHandler{
		survey: survey,
		logger: logger,
	}
}
