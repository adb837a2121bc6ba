package orderserver

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"

	apierrors "github.com/Apurer/go-gin-order-api/internal/shared/errors"
)

const idParam = "id"

// bindIDParam decodes a simple-style path parameter, answering 400 when it is not an int64.
func bindIDParam(c *gin.Context, name string) (int64, bool) {
	var id int64
	err := runtime.BindStyledParameterWithOptions("simple", name, c.Param(name), &id, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(fmt.Sprintf("invalid path parameter %q: %v", name, err)))
		return 0, false
	}
	return id, true
}
