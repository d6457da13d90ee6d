package dto

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	OrgName  string `json:"org_name" validate:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

// MqttACLRequest is the shape EMQX posts to the ACL webhook.
type MqttACLRequest struct {
	Operation string `json:"operation"`
	Username  string `json:"username"`
	Topic     string `json:"topic"`
}

// MqttAuthRequest is the shape EMQX posts to the auth webhook.
type MqttAuthRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
