package orderserver

import (
	"errors"

	"github.com/gin-gonic/gin"

	catalogports "github.com/Apurer/go-gin-order-api/internal/domains/catalog/ports"
	ordersapp "github.com/Apurer/go-gin-order-api/internal/domains/orders/application"
	ordersports "github.com/Apurer/go-gin-order-api/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-order-api/internal/platform/httpx"
	apierrors "github.com/Apurer/go-gin-order-api/internal/shared/errors"
)

const internalErrorDetail = "an unexpected error occurred"

// Store and transport faults fall through to a generic 500 so their text never reaches clients.
var serviceResponder = apierrors.NewResponder(
	apierrors.WithRequestID(httpx.RequestIDFrom),
	apierrors.WithMappers(ordersErrorMapper, catalogErrorMapper),
	apierrors.WithFallback(apierrors.ErrInternal.WithDetail(internalErrorDetail)),
)

func respondProblem(c *gin.Context, problem apierrors.ProblemDetail) {
	serviceResponder.Respond(c, problem)
}

func respondBindError(c *gin.Context, err error) {
	respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
}

// respondServiceError attaches err to the request for the access log and answers with a problem.
func respondServiceError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	serviceResponder.RespondError(c, err)
}

func ordersErrorMapper(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, ordersapp.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	case errors.Is(err, ordersports.ErrIdempotencyConflict):
		return apierrors.ErrConflict.WithDetail(err.Error()).WithExtension("header", HeaderIdempotencyKey), true
	case errors.Is(err, ordersports.ErrOrderNotFound), errors.Is(err, ordersports.ErrOrderDetailNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func catalogErrorMapper(err error) (apierrors.ProblemDetail, bool) {
	if errors.Is(err, catalogports.ErrNotFound) {
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}
