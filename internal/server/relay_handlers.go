package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"firebase.google.com/go/v4/messaging"
	jsonwriter "github.com/dgellow/firebase-front/internal/json"
	"github.com/dgellow/firebase-front/internal/log"
	"github.com/dgellow/firebase-front/internal/push"
	"github.com/dgellow/firebase-front/internal/storage"
)

type registerTokenRequest struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

type sendNotificationRequest struct {
	Token string `json:"token"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// handleRegisterToken records a delivery token. The original endpoint only
// logged the token; with a durable store configured the registration is
// persisted too.
func (s *Server) handleRegisterToken(w http.ResponseWriter, r *http.Request) {
	var req registerTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.LogError("error registering FCM token: %v", err)
		jsonwriter.WriteBareError(w, http.StatusInternalServerError, "Failed to register FCM token")
		return
	}

	log.LogInfoWithFields("relay", "Registering FCM token", map[string]any{
		"userId": req.UserID,
		"token":  req.Token,
	})

	if s.store != nil && req.Token != "" {
		now := time.Now()
		err := s.store.SavePushRegistration(r.Context(), storage.PushRegistration{
			Token:     req.Token,
			UserID:    req.UserID,
			CreatedAt: now,
			LastSeen:  now,
		})
		if err != nil {
			log.LogError("error registering FCM token: %v", err)
			jsonwriter.WriteBareError(w, http.StatusInternalServerError, "Failed to register FCM token")
			return
		}
	}

	jsonwriter.WriteResponse(w, http.StatusOK, map[string]any{"success": true})
}

// handleSendNotification relays a notification to the given token. Without
// admin credentials the response is a mock; the message is still delivered
// to the in-process foreground feed so the dashboard reflects it.
func (s *Server) handleSendNotification(w http.ResponseWriter, r *http.Request) {
	var req sendNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.LogError("error sending notification: %v", err)
		jsonwriter.WriteBareError(w, http.StatusInternalServerError, "Failed to send notification")
		return
	}

	if req.Token == "" {
		jsonwriter.WriteBareError(w, http.StatusBadRequest, "FCM token is required")
		return
	}

	if s.bridge != nil {
		s.bridge.Deliver(push.Message{Title: req.Title, Body: req.Body})
	}

	if s.sender == nil {
		jsonwriter.WriteResponse(w, http.StatusOK, map[string]any{
			"success": true,
			"message": fmt.Sprintf("Notification would be sent to token: %s", req.Token),
			"note":    "This is a mock response. To send real notifications, you need to set up the Firebase Admin SDK.",
		})
		return
	}

	id, err := s.sender.Send(r.Context(), &messaging.Message{
		Token: req.Token,
		Notification: &messaging.Notification{
			Title: req.Title,
			Body:  req.Body,
		},
	})
	if err != nil {
		log.LogError("error sending notification: %v", err)
		jsonwriter.WriteBareError(w, http.StatusInternalServerError, "Failed to send notification")
		return
	}

	jsonwriter.WriteResponse(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Notification sent to token: %s", req.Token),
		"id":      id,
	})
}
