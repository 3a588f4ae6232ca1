package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

type RouterConfig struct {
	Events       *EventHandler
	Commands     *CommandHandler
	Interactions *InteractionHandler
	Middleware   []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	router := mux.NewRouter()

	if cfg.Events != nil {
		router.HandleFunc("/slack/events", cfg.Events.Receive).Methods(http.MethodPost)
	}
	if cfg.Commands != nil {
		router.HandleFunc("/slack/commands", cfg.Commands.SetDuty).Methods(http.MethodPost)
		router.HandleFunc("/slack/commands/remote-days", cfg.Commands.RemoteDays).Methods(http.MethodPost)
	}
	if cfg.Interactions != nil {
		router.HandleFunc("/slack/interactions", cfg.Interactions.Receive).Methods(http.MethodPost)
	}

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	var handler http.Handler = router
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}

	return handler
}
