package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	TokenName        = "token"
	AdminTokenHeader = "X-Admin-Token"
)

//extractToken return token from
//1. query parameter
//2. header
func extractToken(r *http.Request) string {
	token := r.URL.Query().Get(TokenName)

	if token == "" {
		token = r.Header.Get(AdminTokenHeader)
	}

	return token
}

//TokenAuth check that provided token equals
func TokenAuth(main gin.HandlerFunc, originalToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c.Request)

		if originalToken != "" && token == originalToken {
			main(c)
		} else {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Wrong token"})
		}
	}
}
