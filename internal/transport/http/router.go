package http

import (
	"net/http"
	"time"

	httpmw "github.com/comm-hub/chat-service/internal/transport/http/middleware"
	"github.com/comm-hub/chat-service/internal/transport/ws"

	"github.com/go-chi/chi/v5"
	middlewareChi "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func NewRouter(h *Handler, wsServer *ws.Server, mediaDir string) http.Handler {
	r := chi.NewRouter()
	r.Use(middlewareChi.RequestID)
	r.Use(middlewareChi.RealIP)
	r.Use(middlewareChi.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-User-ID"},
		MaxAge:         300,
	}))

	// WS endpoints: авторизация через query, до upgrade
	r.Get("/ws/chat/{room}", wsServer.HandleChat)
	r.Get("/ws/call", wsServer.HandleCall)

	// REST требует Bearer + X-User-ID
	r.Group(func(pr chi.Router) {
		pr.Use(httpmw.AuthMiddleware)
		pr.Use(middlewareChi.Timeout(30 * time.Second))

		pr.Get("/chat/{user1}/{user2}", h.GetConversation)
		pr.Get("/rooms/{key}/messages", h.GetChatHistory)
		pr.Post("/attachments", h.UploadAttachment)
	})

	// загруженные вложения отдаются статикой
	if mediaDir != "" {
		fs := http.StripPrefix("/media/", http.FileServer(http.Dir(mediaDir)))
		r.Get("/media/*", fs.ServeHTTP)
	}

	// health
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}
