package models

// RegisterRequest is the body of POST /auth/register. Coordinates travel
// as strings, the way the registration form holds them.
type RegisterRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Phone      string `json:"phone,omitempty"`
	Role       Role   `json:"role"`
	BloodGroup string `json:"bloodGroup,omitempty"`
	Longitude  string `json:"longitude"`
	Latitude   string `json:"latitude"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileUpdate is the body of PUT /auth/update. Empty fields are omitted
// and therefore left alone by the server.
type ProfileUpdate struct {
	Name       string `json:"name,omitempty"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	BloodGroup string `json:"bloodGroup,omitempty"`
}

// LocationUpdate is the body of PUT /user/update-location.
type LocationUpdate struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}
