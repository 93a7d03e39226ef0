// Package api serves the registry admin endpoints:
//
//	GET    /types                          catalog listing
//	GET    /types/{module}/{name}/schema   JSON Schema of one type
//	GET    /entities/{name}                all entities of a type
//	POST   /entities/{name}                decode the body by type name and add it
//	GET    /entities/{name}/{id}           one entity
//	DELETE /entities/{name}/{id}           remove one entity
//
// Entity routes accept ?module= and ?namespace= to narrow name resolution.
// POST bodies are JSON, or YAML with a YAML Content-Type.
package api

import (
	"fmt"
	"net/http"

	"github.com/km-arc/go-resolver/framework/catalog"
	"github.com/km-arc/go-resolver/framework/decode"
	"github.com/km-arc/go-resolver/framework/factory"
	gohttp "github.com/km-arc/go-resolver/framework/http"
	"github.com/km-arc/go-resolver/framework/logger"
	"github.com/km-arc/go-resolver/framework/resolver"
	"github.com/km-arc/go-resolver/framework/routing"
)

// Deps are the services the handlers use.
type Deps struct {
	Catalog      *catalog.Catalog
	Resolver     *resolver.Resolver
	Repositories *factory.SpecificationRepositoryFactory
	// Decoders by codec name ("json", "yaml").
	Decoders map[string]*decode.Decoder
	Logger   logger.Logger
}

// TypeInfo is one row of GET /types.
type TypeInfo struct {
	Module    string `json:"module"`
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
	FullName  string `json:"fullName"`
	Table     string `json:"table"`
	Schema    string `json:"schema"`
}

// Describe flattens a catalog entry.
func Describe(t *catalog.Type) TypeInfo {
	return TypeInfo{
		Module:    t.Module,
		Namespace: t.Namespace,
		Name:      t.Name,
		FullName:  t.FullName(),
		Table:     t.Table,
		Schema:    t.Schema,
	}
}

type handler struct {
	Deps
}

// Register mounts the endpoints on r.
func Register(r *routing.Router, d Deps) {
	if d.Logger == nil {
		d.Logger = logger.Nop{}
	}
	h := &handler{Deps: d}
	r.Get("/types", h.types)
	r.Get("/types/{module}/{name}/schema", h.schema)
	r.Get("/entities/{name}", h.list)
	r.Post("/entities/{name}", h.create)
	r.Get("/entities/{name}/{id}", h.show)
	r.Delete("/entities/{name}/{id}", h.destroy)
}

func (h *handler) types(w http.ResponseWriter, r *http.Request) {
	out := []TypeInfo{}
	for t := range h.Catalog.All() {
		out = append(out, Describe(t))
	}
	gohttp.NewResponse(w).Success(out)
}

func (h *handler) schema(w http.ResponseWriter, r *http.Request) {
	req, res := gohttp.NewRequest(r), gohttp.NewResponse(w)
	module, name := req.RouteParam("module"), req.RouteParam("name")
	if !h.Resolver.HasModule(module) {
		res.Fail(fmt.Errorf("%w: %q", resolver.ErrModuleNotFound, module))
		return
	}
	t, ok := h.Resolver.TypeByNameInModule(name, module, req.Query("namespace"))
	if !ok {
		res.Fail(fmt.Errorf("%w: %q in module %s", resolver.ErrTypeNotFound, name, module))
		return
	}
	raw, err := catalog.Schema(t)
	if err != nil {
		res.Fail(err)
		return
	}
	res.RawJSON(http.StatusOK, raw)
}

func (h *handler) list(w http.ResponseWriter, r *http.Request) {
	req, res := gohttp.NewRequest(r), gohttp.NewResponse(w)
	repo, err := h.Repositories.Get(req.RouteParam("name"), options(req)...)
	if err != nil {
		res.Fail(err)
		return
	}
	items, err := repo.List(r.Context())
	if err != nil {
		res.Fail(err)
		return
	}
	if items == nil {
		items = []any{}
	}
	res.Success(items)
}

func (h *handler) create(w http.ResponseWriter, r *http.Request) {
	req, res := gohttp.NewRequest(r), gohttp.NewResponse(w)
	name := req.RouteParam("name")

	dec, ok := h.Decoders[req.Codec()]
	if !ok {
		res.Error(http.StatusUnsupportedMediaType, "unsupported content type "+req.ContentType())
		return
	}
	body, err := req.Body()
	if err != nil {
		res.Error(http.StatusBadRequest, err.Error())
		return
	}

	var entity any
	if module := req.Query("module"); module != "" {
		entity, err = dec.DecodeInModule(body, name, module, req.Query("namespace"), decode.Strict())
	} else {
		entity, err = dec.DecodeName(body, name, req.Query("namespace"), decode.Strict())
	}
	if err != nil {
		res.Fail(err)
		return
	}

	repo, err := h.Repositories.Get(name, options(req)...)
	if err != nil {
		res.Fail(err)
		return
	}
	added, err := repo.Add(r.Context(), entity)
	if err != nil {
		h.Logger.Warnf("add %s: %v", name, err)
		res.Fail(err)
		return
	}
	res.Created(added)
}

func (h *handler) show(w http.ResponseWriter, r *http.Request) {
	req, res := gohttp.NewRequest(r), gohttp.NewResponse(w)
	repo, err := h.Repositories.Get(req.RouteParam("name"), options(req)...)
	if err != nil {
		res.Fail(err)
		return
	}
	item, err := repo.GetByID(r.Context(), req.RouteParam("id"))
	if err != nil {
		res.Fail(err)
		return
	}
	res.Success(item)
}

func (h *handler) destroy(w http.ResponseWriter, r *http.Request) {
	req, res := gohttp.NewRequest(r), gohttp.NewResponse(w)
	repo, err := h.Repositories.Get(req.RouteParam("name"), options(req)...)
	if err != nil {
		res.Fail(err)
		return
	}
	item, err := repo.GetByID(r.Context(), req.RouteParam("id"))
	if err != nil {
		res.Fail(err)
		return
	}
	if err := repo.Delete(r.Context(), item); err != nil {
		res.Fail(err)
		return
	}
	res.NoContent()
}

func options(req *gohttp.Request) []factory.Option {
	var opts []factory.Option
	if m := req.Query("module"); m != "" {
		opts = append(opts, factory.InModule(m))
	}
	if ns := req.Query("namespace"); ns != "" {
		opts = append(opts, factory.InNamespace(ns))
	}
	return opts
}
