package model

// PlanType is the subscription tier of a user
type PlanType string

const (
	PlanFree PlanType = "free"
	PlanPro  PlanType = "pro"
)

// User represents an account known to the user directory
type User struct {
	ID        string   `json:"id" db:"id" mapstructure:"id" yaml:"id"`
	Name      string   `json:"name" db:"name" mapstructure:"name" yaml:"name"`
	Email     string   `json:"email" db:"email" mapstructure:"email" yaml:"email"`
	PlanType  PlanType `json:"planType" db:"plan_type" mapstructure:"plan_type" yaml:"plan_type"`
	CreatedAt string   `json:"createdAt,omitempty" db:"created_at" mapstructure:"-" yaml:"-"`
}

// UserInfo is the subset of a user frozen into report snapshots
type UserInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Info returns the snapshot projection of the user
func (u *User) Info() UserInfo {
	return UserInfo{ID: u.ID, Name: u.Name, Email: u.Email}
}

// TokenResponse represents an issued bearer token
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	User        *UserInfo `json:"user"`
}
