package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/venuedir/internal/adapter/auth"
	"github.com/neomorfeo/venuedir/internal/app"
	"github.com/neomorfeo/venuedir/internal/domain"
)

// Register wires all directory and moderation endpoints into the Huma API.
func Register(api huma.API, svc *app.Service) {
	if oapi := api.OpenAPI(); oapi.Components != nil {
		if oapi.Components.SecuritySchemes == nil {
			oapi.Components.SecuritySchemes = map[string]*huma.SecurityScheme{}
		}
		oapi.Components.SecuritySchemes["bearer"] = &huma.SecurityScheme{
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
		}
	}

	registerWorkers(api, svc)
	registerVenues(api, svc)
	registerProposals(api, svc)
	registerQueue(api, svc)
}

// actorFrom returns the authenticated actor, or the zero actor which the
// service rejects with ErrUnauthenticated.
func actorFrom(ctx context.Context) domain.Actor {
	actor, _ := auth.ActorFrom(ctx)
	return actor
}

func post(id, path, summary, tag string, status int) huma.Operation {
	return huma.Operation{
		OperationID:   id,
		Method:        http.MethodPost,
		Path:          path,
		Summary:       summary,
		Tags:          []string{tag},
		DefaultStatus: status,
		Security:      bearer,
	}
}

func op(method, id, path, summary, tag string) huma.Operation {
	return huma.Operation{
		OperationID: id,
		Method:      method,
		Path:        path,
		Summary:     summary,
		Tags:        []string{tag},
		Security:    bearer,
	}
}

var bearer = []map[string][]string{{"bearer": {}}}

func reviewStatusFilter(s string) *domain.ReviewStatus {
	if s == "" {
		return nil
	}
	st := domain.ReviewStatus(s)
	return &st
}

func statusFilter(s string) *domain.Status {
	if s == "" {
		return nil
	}
	st := domain.Status(s)
	return &st
}
