package handlers

import (
	"mailproof/internal/pkg/logger"
	"mailproof/internal/ports"
)

type Deps struct {
	SP     ports.StorageProvider
	Log    *logger.Logger
	Prefix string
}

type Handler struct {
	sp     ports.StorageProvider
	log    *logger.Logger
	prefix string
}

func New(d Deps) *Handler {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}
	prefix := d.Prefix
	if prefix == "" {
		prefix = "previews"
	}
	return &Handler{
		sp:     d.SP,
		log:    log.WithComponent("handlers"),
		prefix: prefix,
	}
}
