package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/zhanghaozz/nfs-ganesha/internal/log/component"
	"github.com/zhanghaozz/nfs-ganesha/internal/log/level"
)

// registerComponentRoutes wires the per-component level surface.
func (s *Server) registerComponentRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-component-levels",
		Method:      http.MethodGet,
		Path:        "/api/log/components",
		Summary:     "List Component Levels",
		Description: "Get the minimum severity of every component",
		Tags:        []string{"components"},
	}, func(ctx context.Context, input *struct{}) (*ComponentListResponse, error) {
		snapshot := s.logger.Components().Snapshot()
		resp := &ComponentListResponse{}
		for c := component.All; c < component.Count; c++ {
			resp.Body.Components = append(resp.Body.Components, ComponentLevel{
				Component: c.String(),
				Level:     snapshot[c].String(),
			})
		}
		return resp, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-component-level",
		Method:      http.MethodGet,
		Path:        "/api/log/components/{component}",
		Summary:     "Get Component Level",
		Description: "Get one component's minimum severity",
		Tags:        []string{"components"},
		Errors:      []int{404},
	}, func(ctx context.Context, input *struct {
		Component string `path:"component" example:"NFSPROTO" doc:"Component name, with or without the COMPONENT_ prefix"`
	}) (*ComponentResponse, error) {
		c, ok := component.Parse(input.Component)
		if !ok {
			return nil, huma.Error404NotFound("unknown component " + input.Component)
		}
		return &ComponentResponse{
			Body: ComponentLevel{
				Component: c.String(),
				Level:     s.logger.Components().Level(c).String(),
			},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "set-component-level",
		Method:      http.MethodPut,
		Path:        "/api/log/components/{component}",
		Summary:     "Set Component Level",
		Description: "Set one component's minimum severity. The ALL sentinel broadcasts to every component. Environment-pinned entries keep their level.",
		Tags:        []string{"components"},
		Errors:      []int{404, 422},
	}, func(ctx context.Context, input *struct {
		Component string `path:"component" example:"NFSPROTO" doc:"Component name, with or without the COMPONENT_ prefix"`
		Body      SetLevelBody
	}) (*ComponentResponse, error) {
		c, ok := component.Parse(input.Component)
		if !ok {
			return nil, huma.Error404NotFound("unknown component " + input.Component)
		}
		lv, ok := level.Parse(input.Body.Level)
		if !ok {
			return nil, huma.Error422UnprocessableEntity("unknown level " + input.Body.Level)
		}
		final := s.logger.SetComponentLevel(c, lv, "api")
		return &ComponentResponse{
			Body: ComponentLevel{
				Component: c.String(),
				Level:     final.String(),
			},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "raise-all-levels",
		Method:      http.MethodPost,
		Path:        "/api/log/levels/raise",
		Summary:     "Raise All Levels",
		Description: "Step every component one level more verbose, as SIGUSR1 does",
		Tags:        []string{"components"},
	}, func(ctx context.Context, input *struct{}) (*ComponentResponse, error) {
		lv := s.logger.RaiseAll()
		return &ComponentResponse{
			Body: ComponentLevel{Component: component.All.String(), Level: lv.String()},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "lower-all-levels",
		Method:      http.MethodPost,
		Path:        "/api/log/levels/lower",
		Summary:     "Lower All Levels",
		Description: "Step every component one level less verbose, as SIGUSR2 does",
		Tags:        []string{"components"},
	}, func(ctx context.Context, input *struct{}) (*ComponentResponse, error) {
		lv := s.logger.LowerAll()
		return &ComponentResponse{
			Body: ComponentLevel{Component: component.All.String(), Level: lv.String()},
		}, nil
	})
}
