package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// NewRouter wires the skill, survey, and health routes behind the shared
// middleware chain.
func NewRouter(kakaoHandler *KakaoHandler, surveyHandler *SurveyHandler, logger *zap.Logger) *mux.Router {
	r := mux.NewRouter()

	r.Use(RequestID, AccessLog(logger), Recover(logger))

	// all three skill blocks post the same payload shape; the dialog
	// state machine routes by precedence, not by path
	r.HandleFunc("/kakao/webhook", kakaoHandler.Webhook).Methods(http.MethodPost)
	r.HandleFunc("/kakao/recommend", kakaoHandler.Webhook).Methods(http.MethodPost)
	r.HandleFunc("/kakao/store", kakaoHandler.Webhook).Methods(http.MethodPost)

	r.HandleFunc("/survey/store", surveyHandler.Register).Methods(http.MethodPost)
	r.HandleFunc("/survey/store/{id}", surveyHandler.GetStore).Methods(http.MethodGet)

	r.HandleFunc("/health", Health).Methods(http.MethodGet)

	return r
}

func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
