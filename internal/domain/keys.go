package domain

type CtxKey string

const (
	KeyUserID    CtxKey = "UserID"
	KeyUserEmail CtxKey = "Email"
	KeyUserRole  CtxKey = "Role"
)

// Actor roles
const (
	RoleCandidate = "candidate"
	RoleCompany   = "company"
	RoleAdmin     = "admin"
)

// Actor is the attributed identity behind an engine operation. The engine
// refuses to apply an action it cannot attribute.
type Actor struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}
