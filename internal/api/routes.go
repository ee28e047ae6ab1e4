package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/phrazzld/cityinfo-api/internal/api/shared"
)

// Handlers groups the resource handlers mounted under /api.
type Handlers struct {
	Cities           *CityHandler
	PointsOfInterest *PointOfInterestHandler
	Files            *FileHandler
}

// RegisterRoutes mounts the resource routes under /api on r. City and point
// of interest routes negotiate JSON or XML; the file route serves raw bytes.
func RegisterRoutes(r chi.Router, h Handlers) {
	r.Route("/api", func(r chi.Router) {
		r.Route("/cities", func(r chi.Router) {
			r.Use(shared.RequireAcceptable)

			r.Get("/", h.Cities.GetCities)
			r.Get("/{id}", h.Cities.GetCity)

			r.Route("/{cityId}/poi", func(r chi.Router) {
				r.Get("/", h.PointsOfInterest.GetPointsOfInterest)
				r.Post("/", h.PointsOfInterest.CreatePointOfInterest)
				r.Get("/{poiId}", h.PointsOfInterest.GetPointOfInterest)
				r.Put("/{poiId}", h.PointsOfInterest.UpdatePointOfInterest)
				r.Patch("/{poiId}", h.PointsOfInterest.PartiallyUpdatePointOfInterest)
				r.Delete("/{poiId}", h.PointsOfInterest.DeletePointOfInterest)
			})
		})

		if h.Files != nil {
			r.Get("/files/{fileId}", h.Files.GetFile)
		}
	})
}
