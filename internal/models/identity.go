package models

const (
	RoleEmployer   = "employer"
	RoleFreelancer = "freelancer"
	RoleAdmin      = "admin"
)

// Actor is the request-scoped caller identity extracted from the bearer
// token. It is passed into every service operation explicitly; nothing in
// the core reads ambient session state.
type Actor struct {
	ID   string
	Role string
}
