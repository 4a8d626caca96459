package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const AdminTokenErr = "Admin token does not match"

type AdminToken struct {
	Token string
}

//AdminAuth runs main only if the request carries the configured admin token
func (a *AdminToken) AdminAuth(main gin.HandlerFunc, errMsg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if a.Token == "" {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "server.admin_token must be configured"})
			return
		}
		if extractToken(c.Request) != a.Token {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Message: errMsg})
			return
		}
		main(c)
	}
}
