// app/echoServer/jwtx/user.go
package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	jwtutil "github.com/AlmamyHaidara/biblioteque/util/jwt"
)

func claims(c echo.Context) (*jwtutil.Claims, error) {
	tok, ok := c.Get("user").(*jwt.Token)
	if !ok || tok == nil {
		return nil, errors.New("no jwt token in context")
	}
	cl, ok := tok.Claims.(*jwtutil.Claims)
	if !ok {
		return nil, errors.New("invalid jwt claims")
	}
	return cl, nil
}

func UserIDFromContext(c echo.Context) (uuid.UUID, error) {
	cl, err := claims(c)
	if err != nil {
		return uuid.Nil, err
	}
	return cl.UserID()
}

func RoleFromContext(c echo.Context) (string, error) {
	cl, err := claims(c)
	if err != nil {
		return "", err
	}
	return cl.Role, nil
}

func EmailFromContext(c echo.Context) (string, error) {
	cl, err := claims(c)
	if err != nil {
		return "", err
	}
	if cl.Email == "" {
		return "", errors.New("email missing in claims")
	}
	return cl.Email, nil
}
