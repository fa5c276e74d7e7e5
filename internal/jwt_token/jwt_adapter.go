package jwttoken

import (
	"finvoice/internal/platform/middleware"
	"finvoice/pkg/domain"
)

// JWTServiceAdapter bridges the token service to the middleware contract.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*middleware.JWTClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &middleware.JWTClaims{Principal: domain.Principal(claims.Subject)}, nil
}
