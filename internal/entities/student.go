package entities

import "time"

type Student struct {
	ID        int       `json:"id"`
	FullName  string    `json:"full_name"`
	DNI       string    `json:"dni"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Status    string    `json:"status"` // e.g. "interesado", "inscripto", "alumno"
	Site      string    `json:"site"`   // Sede
	Career    string    `json:"career"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
