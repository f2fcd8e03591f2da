package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"kakao-store-bot/internal/kakao"
	"kakao-store-bot/internal/service/dialog"
)

// KakaoHandler serves the open-builder skill endpoints. Every call answers
// 200 with a template payload; an unreadable body still gets an apology
// text so the platform never surfaces a raw error.
type KakaoHandler struct {
	dialog *dialog.Service
	logger *zap.Logger
}

func (h *KakaoHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	var req kakao.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("unreadable kakao payload", zap.Error(err))
		writeJSON(w, http.StatusOK, kakao.SimpleText("죄송합니다. 오류가 발생했습니다."))
		return
	}

	turn := dialog.Turn{
		UserKey:     req.UserKey(),
		Utterance:   req.Utterance(),
		Location:    req.Param("location"),
		SysLocation: req.Param("sys_location"),
		Food:        req.Param("food"),
		StoreName:   req.Extra("store_name"),
	}

	writeJSON(w, http.StatusOK, h.dialog.HandleTurn(r.Context(), turn))
}

func NewKakaoHandler(dialog *dialog.Service, logger *zap.Logger) *KakaoHandler {
	return &KakaoHandler{
		dialog: dialog,
		logger: logger,
	}
}
