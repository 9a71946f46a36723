package auth

// Claims representa la sesión de un miembro autenticado.
type Claims struct {
	UserID      string // memberIdx del member API; escopa todo el diario
	MemberID    string // id de login
	Name        string
	CompanyName string
}
