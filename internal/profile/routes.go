// internal/profile/routes.go

package profile

import "github.com/gorilla/mux"

func RegisterRoutes(router *mux.Router, handler *Handler, identity mux.MiddlewareFunc) {
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(identity)

	api.HandleFunc("/profile", handler.GetMyProfile).Methods("GET")
	api.HandleFunc("/profile/completion", handler.GetProfileCompletion).Methods("GET")
	api.HandleFunc("/profile/preferences", handler.UpdatePreferences).Methods("PUT")
	api.HandleFunc("/profile/dealbreakers", handler.UpdateDealbreakers).Methods("PUT")

	api.HandleFunc("/users/{id}/profile", handler.GetUserProfile).Methods("GET")
}
