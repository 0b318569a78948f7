package api

import (
	"go.uber.org/fx"

	"github.com/healthhive/registry/analytics"
	"github.com/healthhive/registry/patients"
	"github.com/healthhive/registry/regions"
	"github.com/healthhive/registry/store"
	"github.com/healthhive/registry/users"
	"github.com/healthhive/registry/visits"
)

type Handler struct {
	analytics  analytics.Service
	patients   patients.Service
	regions    regions.Service
	users      users.Service
	visits     visits.Service
	visitsRepo visits.Repository
}

type Params struct {
	fx.In

	Analytics  analytics.Service
	Patients   patients.Service
	Regions    regions.Service
	Users      users.Service
	Visits     visits.Service
	VisitsRepo visits.Repository
}

func NewHandler(p Params) *Handler {
	return &Handler{
		analytics:  p.Analytics,
		patients:   p.Patients,
		regions:    p.Regions,
		users:      p.Users,
		visits:     p.Visits,
		visitsRepo: p.VisitsRepo,
	}
}

func pagination(offset, limit *int) store.Pagination {
	page := store.DefaultPagination()
	if offset != nil {
		page.Offset = *offset
	}
	if limit != nil {
		page.Limit = *limit
	}
	return page
}
