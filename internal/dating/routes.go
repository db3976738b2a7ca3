package dating

import "github.com/gorilla/mux"

func RegisterRoutes(router *mux.Router, handler *Handler, hub *Hub, identity mux.MiddlewareFunc) {
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(identity)

	// Swiping
	api.HandleFunc("/swipes", handler.Swipe).Methods("POST")
	api.HandleFunc("/swipes/rewind", handler.Rewind).Methods("POST")

	// Discovery
	api.HandleFunc("/candidates", handler.GetCandidates).Methods("GET")
	api.HandleFunc("/standouts", handler.GetStandouts).Methods("GET")

	// Matches
	api.HandleFunc("/matches", handler.GetMatches).Methods("GET")
	api.HandleFunc("/matches/{id}/friends", handler.MoveToFriends).Methods("POST")
	api.HandleFunc("/matches/{id}/unmatch", handler.Unmatch).Methods("POST")
	api.HandleFunc("/matches/{id}/graceful-exit", handler.GracefulExit).Methods("POST")

	// Trust & safety
	api.HandleFunc("/users/{id}/block", handler.BlockUser).Methods("POST")
	api.HandleFunc("/users/{id}/report", handler.ReportUser).Methods("POST")

	// Realtime match notifications
	api.HandleFunc("/ws", hub.ServeWS).Methods("GET")
}
