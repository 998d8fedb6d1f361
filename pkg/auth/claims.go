package auth

import (
	"github.com/angelmondragon/catalog-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Role   enums.CatalogRole
	JTI    string
}

// AccessTokenClaims represents the typed JWT accepted by the catalog API.
type AccessTokenClaims struct {
	UserID uuid.UUID         `json:"user_id"`
	Role   enums.CatalogRole `json:"role"`
	jwt.RegisteredClaims
}
