package http

import (
	"fmt"
	"net/http"

	"github.com/aretw0/guidepost/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// TourSummary is a tour without its steps.
type TourSummary struct {
	ID    string        `json:"id"`
	Title string        `json:"title,omitempty"`
	Roles []domain.Role `json:"roles,omitempty"`
	Steps int           `json:"steps"`
}

// StartRequest starts a tour by id or from an explicit step list.
type StartRequest struct {
	TourID *string                   `json:"tour_id,omitempty"`
	Role   *string                   `json:"role,omitempty"`
	Tag    *string                   `json:"tag,omitempty"`
	Steps  *[]domain.StepDescriptor `json:"steps,omitempty"`
}

// GotoRequest jumps to a 0-based step index.
type GotoRequest struct {
	Index *int `json:"index"`
}

// SessionState is the session snapshot returned by every session route.
type SessionState struct {
	*domain.TourSession
	CurrentStep *domain.StepDescriptor `json:"current_step,omitempty"`
	Completed   bool                   `json:"completed,omitempty"`
}

// ListToursParams defines parameters for ListTours.
type ListToursParams struct {
	Role *string `form:"role,omitempty" json:"role,omitempty"`
}

// GetTourGraphParams defines parameters for GetTourGraph.
type GetTourGraphParams struct {
	SessionId *string `form:"session_id,omitempty" json:"session_id,omitempty"`
}

// RenderTriggerParams defines parameters for RenderTrigger.
type RenderTriggerParams struct {
	Role *string `form:"role,omitempty" json:"role,omitempty"`
	Tour *string `form:"tour,omitempty" json:"tour,omitempty"`
}

// SubscribeEventsParams defines parameters for SubscribeEvents.
type SubscribeEventsParams struct {
	SessionId *string `form:"session_id,omitempty" json:"session_id,omitempty"`
	Watch     *string `form:"watch,omitempty" json:"watch,omitempty"`
}

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// (GET /health)
	GetHealth(w http.ResponseWriter, r *http.Request)
	// (GET /info)
	GetInfo(w http.ResponseWriter, r *http.Request)
	// (GET /tours)
	ListTours(w http.ResponseWriter, r *http.Request, params ListToursParams)
	// (GET /tours/{tourId})
	GetTour(w http.ResponseWriter, r *http.Request, tourId string)
	// (GET /tours/{tourId}/graph)
	GetTourGraph(w http.ResponseWriter, r *http.Request, tourId string, params GetTourGraphParams)
	// (GET /sessions/{sessionId})
	GetSession(w http.ResponseWriter, r *http.Request, sessionId string)
	// (DELETE /sessions/{sessionId})
	DeleteSession(w http.ResponseWriter, r *http.Request, sessionId string)
	// (POST /sessions/{sessionId}/start)
	StartSession(w http.ResponseWriter, r *http.Request, sessionId string)
	// (POST /sessions/{sessionId}/stop)
	StopSession(w http.ResponseWriter, r *http.Request, sessionId string)
	// (POST /sessions/{sessionId}/goto)
	GotoStep(w http.ResponseWriter, r *http.Request, sessionId string)
	// (POST /sessions/{sessionId}/next)
	NextStep(w http.ResponseWriter, r *http.Request, sessionId string)
	// (POST /sessions/{sessionId}/prev)
	PrevStep(w http.ResponseWriter, r *http.Request, sessionId string)
	// (GET /triggers/{variant})
	RenderTrigger(w http.ResponseWriter, r *http.Request, variant string, params RenderTriggerParams)
	// (GET /events)
	SubscribeEvents(w http.ResponseWriter, r *http.Request, params SubscribeEventsParams)
}

// MiddlewareFunc wraps a single route.
type MiddlewareFunc func(http.Handler) http.Handler

// ServerInterfaceWrapper converts path and query parameters before calling the handler.
type ServerInterfaceWrapper struct {
	Handler            ServerInterface
	HandlerMiddlewares []MiddlewareFunc
	ErrorHandlerFunc   func(w http.ResponseWriter, r *http.Request, err error)
}

func (siw *ServerInterfaceWrapper) wrap(h http.Handler) http.Handler {
	for _, middleware := range siw.HandlerMiddlewares {
		h = middleware(h)
	}
	return h
}

func (siw *ServerInterfaceWrapper) GetHealth(w http.ResponseWriter, r *http.Request) {
	siw.wrap(http.HandlerFunc(siw.Handler.GetHealth)).ServeHTTP(w, r)
}

func (siw *ServerInterfaceWrapper) GetInfo(w http.ResponseWriter, r *http.Request) {
	siw.wrap(http.HandlerFunc(siw.Handler.GetInfo)).ServeHTTP(w, r)
}

func (siw *ServerInterfaceWrapper) ListTours(w http.ResponseWriter, r *http.Request) {
	var params ListToursParams
	if err := runtime.BindQueryParameter("form", true, false, "role", r.URL.Query(), &params.Role); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "role", Err: err})
		return
	}
	siw.wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ListTours(w, r, params)
	})).ServeHTTP(w, r)
}

func (siw *ServerInterfaceWrapper) GetTour(w http.ResponseWriter, r *http.Request) {
	tourId, ok := siw.pathParam(w, r, "tourId")
	if !ok {
		return
	}
	siw.wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetTour(w, r, tourId)
	})).ServeHTTP(w, r)
}

func (siw *ServerInterfaceWrapper) GetTourGraph(w http.ResponseWriter, r *http.Request) {
	tourId, ok := siw.pathParam(w, r, "tourId")
	if !ok {
		return
	}
	var params GetTourGraphParams
	if err := runtime.BindQueryParameter("form", true, false, "session_id", r.URL.Query(), &params.SessionId); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "session_id", Err: err})
		return
	}
	siw.wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetTourGraph(w, r, tourId, params)
	})).ServeHTTP(w, r)
}

// sessionRoute binds sessionId and calls one of the session handlers.
func (siw *ServerInterfaceWrapper) sessionRoute(handler func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionId, ok := siw.pathParam(w, r, "sessionId")
		if !ok {
			return
		}
		siw.wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handler(w, r, sessionId)
		})).ServeHTTP(w, r)
	}
}

func (siw *ServerInterfaceWrapper) RenderTrigger(w http.ResponseWriter, r *http.Request) {
	variant, ok := siw.pathParam(w, r, "variant")
	if !ok {
		return
	}
	var params RenderTriggerParams
	if err := runtime.BindQueryParameter("form", true, false, "role", r.URL.Query(), &params.Role); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "role", Err: err})
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "tour", r.URL.Query(), &params.Tour); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "tour", Err: err})
		return
	}
	siw.wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.RenderTrigger(w, r, variant, params)
	})).ServeHTTP(w, r)
}

func (siw *ServerInterfaceWrapper) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	var params SubscribeEventsParams
	if err := runtime.BindQueryParameter("form", true, false, "session_id", r.URL.Query(), &params.SessionId); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "session_id", Err: err})
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "watch", r.URL.Query(), &params.Watch); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "watch", Err: err})
		return
	}
	siw.wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.SubscribeEvents(w, r, params)
	})).ServeHTTP(w, r)
}

func (siw *ServerInterfaceWrapper) pathParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	var value string
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &value,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: name, Err: err})
		return "", false
	}
	return value, true
}

// InvalidParamFormatError reports a parameter that could not be bound.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error {
	return e.Err
}

// ChiServerOptions configures HandlerWithOptions.
type ChiServerOptions struct {
	BaseURL          string
	BaseRouter       chi.Router
	Middlewares      []MiddlewareFunc
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)

	// SessionMiddlewares run around the mutating session routes, after routing.
	SessionMiddlewares []func(http.Handler) http.Handler
}

// HandlerFromMux creates an http.Handler with routing matching the OpenAPI spec based on the provided mux.
func HandlerFromMux(si ServerInterface, r chi.Router) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{BaseRouter: r})
}

// HandlerWithOptions creates an http.Handler with additional options.
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := ServerInterfaceWrapper{
		Handler:            si,
		HandlerMiddlewares: options.Middlewares,
		ErrorHandlerFunc:   options.ErrorHandlerFunc,
	}

	base := options.BaseURL
	r.Get(base+"/health", wrapper.GetHealth)
	r.Get(base+"/info", wrapper.GetInfo)
	r.Get(base+"/tours", wrapper.ListTours)
	r.Get(base+"/tours/{tourId}", wrapper.GetTour)
	r.Get(base+"/tours/{tourId}/graph", wrapper.GetTourGraph)
	r.Get(base+"/sessions/{sessionId}", wrapper.sessionRoute(si.GetSession))
	r.Delete(base+"/sessions/{sessionId}", wrapper.sessionRoute(si.DeleteSession))
	r.Group(func(r chi.Router) {
		r.Use(options.SessionMiddlewares...)
		r.Post(base+"/sessions/{sessionId}/start", wrapper.sessionRoute(si.StartSession))
		r.Post(base+"/sessions/{sessionId}/stop", wrapper.sessionRoute(si.StopSession))
		r.Post(base+"/sessions/{sessionId}/goto", wrapper.sessionRoute(si.GotoStep))
		r.Post(base+"/sessions/{sessionId}/next", wrapper.sessionRoute(si.NextStep))
		r.Post(base+"/sessions/{sessionId}/prev", wrapper.sessionRoute(si.PrevStep))
	})
	r.Get(base+"/triggers/{variant}", wrapper.RenderTrigger)
	r.Get(base+"/events", wrapper.SubscribeEvents)
	return r
}
