package dto

import "strings"

// RegisterRequest collapses the signup flow into one submission: the
// organization details, its responsible contact, and the owner account.
type RegisterRequest struct {
	OrgName         string `json:"org_name"`
	OrgType         string `json:"org_type"`
	Description     string `json:"description,omitempty"`
	ContactName     string `json:"contact_name"`
	ContactEmail    string `json:"contact_email"`
	ContactPhone    string `json:"contact_phone,omitempty"`
	ContactPosition string `json:"contact_position,omitempty"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	Name            string `json:"name"`
	AcceptTerms     bool   `json:"accept_terms"`
}

var validOrgTypes = map[string]bool{
	"tv":        true,
	"radio":     true,
	"press":     true,
	"web_media": true,
	"web_tv":    true,
}

func (r RegisterRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.OrgName == "" {
		errors["org_name"] = "Organization name is required"
	}
	if !validOrgTypes[r.OrgType] {
		errors["org_type"] = "Organization type must be one of: tv, radio, press, web_media, web_tv"
	}
	if r.ContactName == "" {
		errors["contact_name"] = "Contact name is required"
	}
	if r.ContactEmail == "" || !strings.Contains(r.ContactEmail, "@") {
		errors["contact_email"] = "A valid contact email is required"
	}
	if r.Email == "" || !strings.Contains(r.Email, "@") {
		errors["email"] = "A valid email is required"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	} else if len(r.Password) < 8 {
		errors["password"] = "Password must be at least 8 characters"
	}
	if r.Name == "" {
		errors["name"] = "Name is required"
	}
	if !r.AcceptTerms {
		errors["accept_terms"] = "Terms of service must be accepted"
	}

	return errors
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	}

	return errors
}

type InviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (r InviteRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" || !strings.Contains(r.Email, "@") {
		errors["email"] = "A valid email is required"
	}
	if r.Role == "" {
		errors["role"] = "Role is required"
	}

	return errors
}

type AcceptInviteRequest struct {
	Token    string `json:"token"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (r AcceptInviteRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Token == "" {
		errors["token"] = "Invite token is required"
	}
	if r.Name == "" {
		errors["name"] = "Name is required"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	} else if len(r.Password) < 8 {
		errors["password"] = "Password must be at least 8 characters"
	}

	return errors
}

type AuthResponse struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

type UserDTO struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	Role           string `json:"role"`
	OrganizationID string `json:"organization_id,omitempty"`
	OrgName        string `json:"org_name,omitempty"`
}
