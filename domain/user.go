package domain

// Role is the closed set of permission levels a user can hold.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleNormal Role = "user"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleNormal
}

// DisplayName returns the label shown to people.
func (r Role) DisplayName() string {
	switch r {
	case RoleAdmin:
		return "Administrador"
	case RoleNormal:
		return "Usuario Normal"
	default:
		return string(r)
	}
}

// User represents an identity that can log in and own tasks.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Public returns a copy without the credential, safe to hand to transports.
func (u *User) Public() *User {
	if u == nil {
		return nil
	}
	out := *u
	out.Password = ""
	return &out
}
