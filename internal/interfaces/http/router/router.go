// Package router assembles the gin engine: the middleware chain, the
// unversioned operational endpoints and the /api/v1 resource routes.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spares/backend/internal/infrastructure/config"
	"github.com/spares/backend/internal/infrastructure/logger"
	"github.com/spares/backend/internal/infrastructure/telemetry"
	"github.com/spares/backend/internal/interfaces/http/handler"
	"github.com/spares/backend/internal/interfaces/http/middleware"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// APIPrefix is where every resource route is mounted
const APIPrefix = "/api/v1"

// Handlers bundles the HTTP handlers served by the API. Nil handlers
// leave their routes unregistered.
type Handlers struct {
	PartTypes    *handler.PartTypeHandler
	Inventory    *handler.InventoryHandler
	Transactions *handler.TransactionHandler
	References   *handler.ReferenceHandler
	Health       *handler.HealthHandler
}

// EngineConfig carries the cross-cutting settings used to build the engine
type EngineConfig struct {
	HTTP    config.HTTPConfig
	Tracing middleware.TracingConfig
	Actor   middleware.ActorConfig
	// Meter enables OTel HTTP metrics when set
	Meter metric.Meter
	// Registry enables /metrics and Prometheus HTTP metrics when set
	Registry *prometheus.Registry
	Logger   *zap.Logger
}

// NewEngine builds the gin engine with the middleware chain and every route.
func NewEngine(cfg EngineConfig, h Handlers) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return nil, err
	}

	// request id before anything that logs or tags spans
	engine.Use(
		middleware.RequestID(),
		middleware.Tracing(cfg.Tracing),
		logger.AccessLog(log),
		logger.Recovery(log),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		middleware.CORS(middleware.CORSConfigFrom(cfg.HTTP)),
	)
	if cfg.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	}
	if cfg.Meter != nil {
		engine.Use(middleware.HTTPMetrics(cfg.Meter, log))
	}
	if cfg.Registry != nil {
		engine.Use(middleware.PrometheusHTTPMetrics(cfg.Registry))
		engine.GET("/metrics", gin.WrapH(telemetry.PrometheusHandler(cfg.Registry)))
	}
	if h.Health != nil {
		engine.GET("/health", h.Health.Health)
	}
	engine.NoRoute(handler.RouteNotFound)

	actorCfg := cfg.Actor
	if actorCfg.Logger == nil {
		actorCfg.Logger = log
	}
	api := engine.Group(APIPrefix, middleware.Actor(actorCfg), middleware.SpanEnricher())
	mount(api, resources(h))

	return engine, nil
}

type route struct {
	method  string
	path    string
	handler gin.HandlerFunc
}

// resource is the set of routes sharing one path prefix under the API group
type resource struct {
	path   string
	routes []route
}

func mount(api *gin.RouterGroup, all []resource) {
	for _, res := range all {
		g := api.Group(res.path)
		for _, rt := range res.routes {
			g.Handle(rt.method, rt.path, rt.handler)
		}
	}
}

func resources(h Handlers) []resource {
	var all []resource

	if p := h.PartTypes; p != nil {
		all = append(all, resource{"/part-types", []route{
			{http.MethodGet, "", p.List},
			{http.MethodPost, "", p.Create},
			{http.MethodGet, "/:id", p.GetByID},
			{http.MethodPut, "/:id", p.Update},
			{http.MethodDelete, "/:id", p.Delete},
			{http.MethodGet, "/:id/stock", p.Stock},
		}})
	}

	if inv := h.Inventory; inv != nil {
		all = append(all, resource{"/inventory", []route{
			{http.MethodGet, "", inv.List},
			{http.MethodPost, "", inv.Create},
			{http.MethodGet, "/:id", inv.GetByID},
			{http.MethodPut, "/:id", inv.Update},
			{http.MethodDelete, "/:id", inv.Delete},
			{http.MethodPost, "/:id/check-in", inv.CheckIn},
			{http.MethodPost, "/:id/check-out", inv.CheckOut},
			{http.MethodPost, "/:id/adjust", inv.Adjust},
			{http.MethodPost, "/:id/allocate", inv.Allocate},
			{http.MethodPost, "/:id/deallocate", inv.Deallocate},
		}})
	}

	if tx := h.Transactions; tx != nil {
		all = append(all, resource{"/transactions", []route{
			{http.MethodGet, "", tx.List},
			{http.MethodGet, "/export", tx.Export},
			{http.MethodGet, "/:id", tx.GetByID},
			{http.MethodPatch, "/:id/notes", tx.AttachNotes},
		}})
	}

	if ref := h.References; ref != nil {
		all = append(all,
			referenceResource("/manufacturers", ref.ListManufacturers, ref.GetManufacturer, ref.CreateManufacturer, ref.DeleteManufacturer),
			referenceResource("/locations", ref.ListLocations, ref.GetLocation, ref.CreateLocation, ref.DeleteLocation),
			referenceResource("/equipment-models", ref.ListEquipmentModels, ref.GetEquipmentModel, ref.CreateEquipmentModel, ref.DeleteEquipmentModel),
			referenceResource("/equipment", ref.ListEquipment, ref.GetEquipment, ref.CreateEquipment, ref.DeleteEquipment),
			referenceResource("/actors", ref.ListActors, ref.GetActor, ref.CreateActor, ref.DeleteActor),
		)
	}

	if h.Health != nil {
		all = append(all, resource{"/system", []route{
			{http.MethodGet, "/info", h.Health.SystemInfo},
		}})
	}

	return all
}

func referenceResource(path string, list, get, create, remove gin.HandlerFunc) resource {
	return resource{path, []route{
		{http.MethodGet, "", list},
		{http.MethodPost, "", create},
		{http.MethodGet, "/:id", get},
		{http.MethodDelete, "/:id", remove},
	}}
}
