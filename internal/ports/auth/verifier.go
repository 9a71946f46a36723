package auth

import "context"

// AuthVerifier verifica un token y devuelve claims o error.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}

// Authenticator valida credenciales contra el member API externo.
// La autenticación es un colaborador externo: el core solo consume el
// UserID que entrega.
type Authenticator interface {
	Login(ctx context.Context, memberID, password string) (Claims, error)
}
