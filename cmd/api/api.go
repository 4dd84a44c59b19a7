package api

import (
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/tandemcare/tandem-server/cmd/utils"
	"github.com/tandemcare/tandem-server/service/event"
	"github.com/tandemcare/tandem-server/service/scheduling"
	"github.com/tandemcare/tandem-server/service/slot"
	"gorm.io/gorm"
)

type APIServer struct {
	address     string
	db          *gorm.DB
	log         *logrus.Logger
	regenerator *scheduling.Regenerator
}

func NewApiServer(address string, db *gorm.DB, log *logrus.Logger, regenerator *scheduling.Regenerator) *APIServer {
	return &APIServer{
		address:     address,
		db:          db,
		log:         log,
		regenerator: regenerator,
	}
}

func (s *APIServer) Run() error {
	router := mux.NewRouter()
	subrouter := router.PathPrefix("/api/v1").Subrouter()
	subrouter.Use(utils.AuthMiddleware)

	eventHandler := event.NewEventHandler(s.db, s.regenerator)
	eventHandler.RegisterRoutes(subrouter)

	slotHandler := slot.NewSlotHandler(s.db)
	slotHandler.RegisterRoutes(subrouter)

	s.log.WithField("address", s.address).Info("server running")
	return http.ListenAndServe(s.address, handlers.LoggingHandler(os.Stdout, router))
}
