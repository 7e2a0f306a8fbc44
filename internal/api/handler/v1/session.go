package v1

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/suckingout/poker-nights-api/internal/api/middleware"
	"github.com/suckingout/poker-nights-api/internal/domain"
)

var errNoSession = errors.New("no authenticated session")

func sessionFromContext(ctx *gin.Context) (domain.Session, error) {
	value, ok := ctx.Get(middleware.SessionKey)
	if !ok {
		return domain.Session{}, errNoSession
	}

	session, ok := value.(domain.Session)
	if !ok {
		return domain.Session{}, errNoSession
	}

	return session, nil
}
