package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/zhanghaozz/nfs-ganesha/internal/log/facility"
	"github.com/zhanghaozz/nfs-ganesha/internal/log/format"
	"github.com/zhanghaozz/nfs-ganesha/internal/log/level"
)

// facilityError maps registry outcomes onto HTTP status errors.
func facilityError(err error) error {
	switch {
	case errors.Is(err, facility.ErrNotFound):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, facility.ErrExists),
		errors.Is(err, facility.ErrDefault),
		errors.Is(err, facility.ErrAlreadyEnabled),
		errors.Is(err, facility.ErrAlreadyDisabled):
		return huma.Error409Conflict(err.Error())
	case errors.Is(err, facility.ErrInvalid):
		return huma.Error422UnprocessableEntity(err.Error())
	}
	return huma.Error500InternalServerError(err.Error())
}

func facilityData(info facility.Info) FacilityData {
	return FacilityData{
		Name:        info.Name,
		Kind:        info.Kind.String(),
		MaxLevel:    info.MaxLevel.String(),
		Headers:     info.Verbosity.String(),
		Destination: info.Destination,
		Active:      info.Active,
		Default:     info.Default,
	}
}

// registerFacilityRoutes wires the facility lifecycle surface.
func (s *Server) registerFacilityRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-facilities",
		Method:      http.MethodGet,
		Path:        "/api/log/facilities",
		Summary:     "List Facilities",
		Description: "Get every registered facility",
		Tags:        []string{"facilities"},
	}, func(ctx context.Context, input *struct{}) (*FacilityListResponse, error) {
		resp := &FacilityListResponse{}
		for _, info := range s.logger.Registry().List() {
			resp.Body.Facilities = append(resp.Body.Facilities, facilityData(info))
		}
		return resp, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-facility",
		Method:      http.MethodGet,
		Path:        "/api/log/facilities/{name}",
		Summary:     "Get Facility",
		Description: "Get one facility by name",
		Tags:        []string{"facilities"},
		Errors:      []int{404},
	}, func(ctx context.Context, input *struct {
		Name string `path:"name" example:"FILE" doc:"Facility name, case-insensitive"`
	}) (*FacilityResponse, error) {
		info, err := s.logger.Registry().Lookup(input.Name)
		if err != nil {
			return nil, facilityError(err)
		}
		return &FacilityResponse{Body: facilityData(info)}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID:   "create-facility",
		Method:        http.MethodPost,
		Path:          "/api/log/facilities",
		Summary:       "Create Facility",
		Description:   "Register a new inactive facility",
		Tags:          []string{"facilities"},
		DefaultStatus: http.StatusCreated,
		Errors:        []int{409, 422},
	}, func(ctx context.Context, input *struct {
		Body CreateFacilityBody
	}) (*FacilityResponse, error) {
		maxLevel := level.FullDebug
		if input.Body.MaxLevel != "" {
			lv, ok := level.Parse(input.Body.MaxLevel)
			if !ok {
				return nil, huma.Error422UnprocessableEntity("unknown level " + input.Body.MaxLevel)
			}
			maxLevel = lv
		}
		verb := format.VerbFull
		if input.Body.Headers != "" {
			v, ok := format.ParseVerbosity(input.Body.Headers)
			if !ok {
				return nil, huma.Error422UnprocessableEntity("unknown headers " + input.Body.Headers)
			}
			verb = v
		}

		var err error
		switch input.Body.Destination {
		case "stdout", "stderr":
			err = s.logger.CreateStreamFacility(input.Body.Name, input.Body.Destination, maxLevel, verb)
		case "journal", "syslog":
			err = s.logger.CreateJournalFacility(input.Body.Name, maxLevel, verb)
		case "":
			err = huma.Error422UnprocessableEntity("destination is required")
		default:
			err = s.logger.CreateFileFacility(input.Body.Name, input.Body.Destination, maxLevel, verb)
		}
		if err != nil {
			return nil, facilityError(err)
		}

		info, err := s.logger.Registry().Lookup(input.Body.Name)
		if err != nil {
			return nil, facilityError(err)
		}
		return &FacilityResponse{Body: facilityData(info)}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "release-facility",
		Method:      http.MethodDelete,
		Path:        "/api/log/facilities/{name}",
		Summary:     "Release Facility",
		Description: "Remove a facility. Releasing the default is rejected.",
		Tags:        []string{"facilities"},
		Errors:      []int{404, 409},
	}, func(ctx context.Context, input *struct {
		Name string `path:"name" example:"AUDIT" doc:"Facility name"`
	}) (*struct{}, error) {
		if err := s.logger.ReleaseFacility(input.Name); err != nil {
			return nil, facilityError(err)
		}
		return &struct{}{}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "enable-facility",
		Method:      http.MethodPost,
		Path:        "/api/log/facilities/{name}/enable",
		Summary:     "Enable Facility",
		Description: "Add a facility to the active set",
		Tags:        []string{"facilities"},
		Errors:      []int{404, 409},
	}, func(ctx context.Context, input *struct {
		Name string `path:"name" doc:"Facility name"`
	}) (*FacilityResponse, error) {
		if err := s.logger.EnableFacility(input.Name); err != nil {
			return nil, facilityError(err)
		}
		return s.facilitySnapshot(input.Name)
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "disable-facility",
		Method:      http.MethodPost,
		Path:        "/api/log/facilities/{name}/disable",
		Summary:     "Disable Facility",
		Description: "Remove a facility from the active set. Disabling the default is rejected.",
		Tags:        []string{"facilities"},
		Errors:      []int{404, 409},
	}, func(ctx context.Context, input *struct {
		Name string `path:"name" doc:"Facility name"`
	}) (*FacilityResponse, error) {
		if err := s.logger.DisableFacility(input.Name); err != nil {
			return nil, facilityError(err)
		}
		return s.facilitySnapshot(input.Name)
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "set-default-facility",
		Method:      http.MethodPost,
		Path:        "/api/log/facilities/{name}/default",
		Summary:     "Set Default Facility",
		Description: "Promote a facility to default, activating it",
		Tags:        []string{"facilities"},
		Errors:      []int{404},
	}, func(ctx context.Context, input *struct {
		Name string `path:"name" doc:"Facility name"`
	}) (*FacilityResponse, error) {
		if err := s.logger.SetDefaultFacility(input.Name); err != nil {
			return nil, facilityError(err)
		}
		return s.facilitySnapshot(input.Name)
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "set-facility-level",
		Method:      http.MethodPut,
		Path:        "/api/log/facilities/{name}/level",
		Summary:     "Set Facility Level",
		Description: "Update the maximum severity a facility accepts",
		Tags:        []string{"facilities"},
		Errors:      []int{404, 422},
	}, func(ctx context.Context, input *struct {
		Name string `path:"name" doc:"Facility name"`
		Body SetLevelBody
	}) (*FacilityResponse, error) {
		lv, ok := level.Parse(input.Body.Level)
		if !ok {
			return nil, huma.Error422UnprocessableEntity("unknown level " + input.Body.Level)
		}
		if err := s.logger.SetFacilityLevel(input.Name, lv); err != nil {
			return nil, facilityError(err)
		}
		return s.facilitySnapshot(input.Name)
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "set-facility-destination",
		Method:      http.MethodPut,
		Path:        "/api/log/facilities/{name}/destination",
		Summary:     "Set Facility Destination",
		Description: "Re-point a stream facility to stdout/stderr or rewrite a file facility's path",
		Tags:        []string{"facilities"},
		Errors:      []int{404, 422},
	}, func(ctx context.Context, input *struct {
		Name string `path:"name" doc:"Facility name"`
		Body SetDestinationBody
	}) (*FacilityResponse, error) {
		if err := s.logger.SetFacilityDestination(input.Name, input.Body.Destination); err != nil {
			return nil, facilityError(err)
		}
		return s.facilitySnapshot(input.Name)
	})
}

func (s *Server) facilitySnapshot(name string) (*FacilityResponse, error) {
	info, err := s.logger.Registry().Lookup(name)
	if err != nil {
		return nil, facilityError(err)
	}
	return &FacilityResponse{Body: facilityData(info)}, nil
}
