package errors

import (
	"errors"

	"github.com/gin-gonic/gin"
)

// ContentTypeProblemJSON is the media type of problem responses.
const ContentTypeProblemJSON = "application/problem+json"

// ErrorMapper translates an application error into a problem. It reports false
// for errors it does not recognise.
type ErrorMapper func(err error) (ProblemDetail, bool)

// Responder writes problems and maps errors through an ordered chain of mappers.
type Responder struct {
	baseURI   string
	requestID func(*gin.Context) string
	mappers   []ErrorMapper
	fallback  ProblemDetail
}

type ResponderOption func(*Responder)

// WithBaseURI prefixes relative problem types.
func WithBaseURI(uri string) ResponderOption {
	return func(r *Responder) { r.baseURI = uri }
}

// WithRequestID stamps each problem with the id returned by fn.
func WithRequestID(fn func(*gin.Context) string) ResponderOption {
	return func(r *Responder) { r.requestID = fn }
}

// WithMappers appends mappers; the first match wins.
func WithMappers(mappers ...ErrorMapper) ResponderOption {
	return func(r *Responder) { r.mappers = append(r.mappers, mappers...) }
}

// WithFallback sets the problem sent for errors no mapper recognises.
func WithFallback(problem ProblemDetail) ResponderOption {
	return func(r *Responder) { r.fallback = problem }
}

func NewResponder(opts ...ResponderOption) *Responder {
	r := &Responder{fallback: ErrInternal}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Respond writes problem and aborts the handler chain.
func (r *Responder) Respond(c *gin.Context, problem ProblemDetail) {
	if r.baseURI != "" && len(problem.Type) > 0 && problem.Type[0] == '/' {
		problem.Type = r.baseURI + problem.Type
	}
	if problem.Instance == "" {
		problem.Instance = c.Request.URL.Path
	}
	if problem.RequestID == "" && r.requestID != nil {
		problem.RequestID = r.requestID(c)
	}
	c.Header("Content-Type", ContentTypeProblemJSON)
	c.AbortWithStatusJSON(problem.Status, problem)
}

// RespondError answers with the first mapped problem. A ProblemDetail in the
// chain is sent as is; anything else gets the fallback.
func (r *Responder) RespondError(c *gin.Context, err error) {
	for _, mapper := range r.mappers {
		if problem, ok := mapper(err); ok {
			r.Respond(c, problem)
			return
		}
	}
	var problem ProblemDetail
	if errors.As(err, &problem) {
		r.Respond(c, problem)
		return
	}
	r.Respond(c, r.fallback)
}
