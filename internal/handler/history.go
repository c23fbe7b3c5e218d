package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"groupchat/internal/model"
)

// GetHistory handles GET /api/messages/history
// 直近の保存済みメッセージを古い順で返す
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	log.Printf("[GET /api/messages/history] Request received from %s", r.RemoteAddr)

	msgs, err := h.Store.Recent(r.Context(), h.Config.HistoryLimit)
	if err != nil {
		log.Printf("[GET /api/messages/history] ❌ Store error: %v", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "Failed to load history"})
		return
	}

	// Recentは新しい順で返すので、クライアント向けに古い順へ反転する
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}

	if msgs == nil {
		msgs = []model.Message{}
	}

	log.Printf("[GET /api/messages/history] ✅ Returned %d messages", len(msgs))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(msgs)
}
