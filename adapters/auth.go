package adapters

import (
	"fmt"

	"github.com/CommonGateway/GeboorteVrijBRPBundle/gateway"
	"github.com/CommonGateway/GeboorteVrijBRPBundle/timestamp"
	"github.com/carlmjohnson/requests"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

const authorizationHeader = "Authorization"

//authenticate adds credentials of the source to the request
func (hc *HTTPCaller) authenticate(builder *requests.Builder, source *gateway.Source) error {
	switch source.Auth {
	case "", gateway.AuthNone:
		return nil
	case gateway.AuthAPIKey:
		if source.APIKey == "" {
			return errors.New("apikey is empty")
		}
		header := source.AuthorizationHeader
		if header == "" {
			header = authorizationHeader
		}
		builder.Header(header, source.APIKey)
	case gateway.AuthUsernamePassword:
		builder.BasicAuth(source.Username, source.Password)
	case gateway.AuthJWT, gateway.AuthVrijBRPJWT:
		token, err := hc.JWTToken(source)
		if err != nil {
			return err
		}
		builder.Bearer(token)
	default:
		return fmt.Errorf("Unsupported auth type [%s]. Available: none, apikey, username-password, jwt, vrijbrp-jwt", source.Auth)
	}

	return nil
}

//JWTToken returns HS256 token signed with the source password
//iss and sub are the source username
func (hc *HTTPCaller) JWTToken(source *gateway.Source) (string, error) {
	if source.Password == "" {
		return "", errors.New("password (JWT secret) is empty")
	}

	now := timestamp.Now()
	claims := jwt.MapClaims{
		"iss": source.Username,
		"sub": source.Username,
		"iat": now.Unix(),
		"exp": now.Add(hc.jwtExpiration).Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(source.Password))
	if err != nil {
		return "", errors.Wrap(err, "signing JWT")
	}

	return signed, nil
}
