package entity

import "strings"

// Customer representa un cliente del sistema de facturación remoto.
type Customer struct {
	ID          int64
	FirstName   string
	LastName    string
	Address     string
	Zip         string
	City        string
	Country     string
	CountryCode string
}

// FullName nombre y apellido separados por espacio.
func (c *Customer) FullName() string {
	if c == nil {
		return ""
	}
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}
