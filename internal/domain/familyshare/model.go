package familyshare

import "time"

type Scope string

const (
	ScopeMedsRead   Scope = "meds:read"
	ScopeMedsManage Scope = "meds:manage"
	ScopeAdhRead    Scope = "adherence:read"
	ScopeAdhLog     Scope = "adherence:log"
	ScopeAlertsRecv Scope = "alerts:receive"
)

type Status string

const (
	StatusInvited Status = "invited"
	StatusActive  Status = "active"
	StatusRevoked Status = "revoked"
)

// Grant es un permiso de acceso familiar: el dueño del diario comparte
// su registro de medicamentos con otro miembro (cónyuge, hijo, médico).
type Grant struct {
	ID string

	OwnerUserID   string // quien comparte su diario
	GranteeUserID string // familiar invitado

	Relationship string // "배우자", "자녀", "담당의", ...

	Scopes []Scope
	Status Status

	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}
