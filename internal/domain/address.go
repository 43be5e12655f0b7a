package domain

import (
	"strings"
	"time"
)

// AddressType labels a saved address.
type AddressType string

const (
	AddressHome  AddressType = "home"
	AddressWork  AddressType = "work"
	AddressOther AddressType = "other"
)

const defaultCountry = "India"

// Address is one entry of a customer's address book.
type Address struct {
	ID           string      `json:"id"`
	Type         AddressType `json:"type"`
	FullName     string      `json:"fullName"`
	Phone        string      `json:"phone"`
	AddressLine1 string      `json:"addressLine1"`
	AddressLine2 string      `json:"addressLine2,omitempty"`
	City         string      `json:"city"`
	State        string      `json:"state"`
	PostalCode   string      `json:"postalCode"`
	Country      string      `json:"country"`
	Landmark     string      `json:"landmark,omitempty"`
	IsDefault    bool        `json:"isDefault"`
	CreatedAt    time.Time   `json:"createdAt"`
}

// AddressPatch carries a partial update. Nil fields are left unchanged.
type AddressPatch struct {
	Type         *AddressType `json:"type,omitempty"`
	FullName     *string      `json:"fullName,omitempty"`
	Phone        *string      `json:"phone,omitempty"`
	AddressLine1 *string      `json:"addressLine1,omitempty"`
	AddressLine2 *string      `json:"addressLine2,omitempty"`
	City         *string      `json:"city,omitempty"`
	State        *string      `json:"state,omitempty"`
	PostalCode   *string      `json:"postalCode,omitempty"`
	Country      *string      `json:"country,omitempty"`
	Landmark     *string      `json:"landmark,omitempty"`
	IsDefault    *bool        `json:"isDefault,omitempty"`
}

// Validate checks the fields every stored address must carry.
func (a Address) Validate() error {
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"fullName", a.FullName},
		{"phone", a.Phone},
		{"addressLine1", a.AddressLine1},
		{"city", a.City},
		{"state", a.State},
		{"postalCode", a.PostalCode},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return Validation("required fields missing: %s", strings.Join(missing, ", "))
	}
	switch a.Type {
	case AddressHome, AddressWork, AddressOther:
	default:
		return Validation("invalid address type %q", a.Type)
	}
	return nil
}

func (a *Address) normalize() {
	if a.Type == "" {
		a.Type = AddressHome
	}
	if strings.TrimSpace(a.Country) == "" {
		a.Country = defaultCountry
	}
	a.FullName = strings.TrimSpace(a.FullName)
	a.Phone = strings.TrimSpace(a.Phone)
	a.AddressLine1 = strings.TrimSpace(a.AddressLine1)
	a.AddressLine2 = strings.TrimSpace(a.AddressLine2)
	a.City = strings.TrimSpace(a.City)
	a.State = strings.TrimSpace(a.State)
	a.PostalCode = strings.TrimSpace(a.PostalCode)
	a.Country = strings.TrimSpace(a.Country)
	a.Landmark = strings.TrimSpace(a.Landmark)
}

// FullAddress renders the display string used in shipping snapshots.
func (a Address) FullAddress() string {
	var b strings.Builder
	b.WriteString(a.AddressLine1)
	b.WriteString(", ")
	if a.AddressLine2 != "" {
		b.WriteString(a.AddressLine2)
		b.WriteString(", ")
	}
	b.WriteString(a.City)
	b.WriteString(", ")
	b.WriteString(a.State)
	b.WriteString(" ")
	b.WriteString(a.PostalCode)
	return b.String()
}

// AddressBook is one customer's addresses in stable insertion order.
// After every mutating operation a non-empty book has exactly one default.
type AddressBook struct {
	Addresses []Address
}

// Find returns the address with the given id.
func (b *AddressBook) Find(id string) (Address, bool) {
	if i := b.index(id); i >= 0 {
		return b.Addresses[i], true
	}
	return Address{}, false
}

// Default returns the default address, if any.
func (b *AddressBook) Default() (Address, bool) {
	for _, a := range b.Addresses {
		if a.IsDefault {
			return a, true
		}
	}
	return Address{}, false
}

// Add validates and appends a. The first address always becomes the default.
func (b *AddressBook) Add(a Address) (Address, error) {
	a.normalize()
	if err := a.Validate(); err != nil {
		return Address{}, err
	}
	a.IsDefault = a.IsDefault || len(b.Addresses) == 0
	if a.IsDefault {
		b.clearDefault()
	}
	b.Addresses = append(b.Addresses, a)
	return a, nil
}

// Update applies patch to the address with the given id.
func (b *AddressBook) Update(id string, patch AddressPatch) (Address, error) {
	i := b.index(id)
	if i < 0 {
		return Address{}, ErrNotFound
	}
	next := b.Addresses[i]
	applyPatch(&next, patch)
	next.normalize()
	if err := next.Validate(); err != nil {
		return Address{}, err
	}
	// Unsetting the only default would leave the book without one.
	if b.Addresses[i].IsDefault {
		next.IsDefault = true
	}
	if next.IsDefault {
		b.clearDefault()
	}
	b.Addresses[i] = next
	return next, nil
}

// Remove deletes the address. A removed default promotes the first remaining address.
func (b *AddressBook) Remove(id string) error {
	i := b.index(id)
	if i < 0 {
		return ErrNotFound
	}
	wasDefault := b.Addresses[i].IsDefault
	b.Addresses = append(b.Addresses[:i], b.Addresses[i+1:]...)
	if wasDefault && len(b.Addresses) > 0 {
		b.Addresses[0].IsDefault = true
	}
	return nil
}

// SetDefault marks id as the single default address.
func (b *AddressBook) SetDefault(id string) (Address, error) {
	i := b.index(id)
	if i < 0 {
		return Address{}, ErrNotFound
	}
	b.clearDefault()
	b.Addresses[i].IsDefault = true
	return b.Addresses[i], nil
}

func (b *AddressBook) clearDefault() {
	for i := range b.Addresses {
		b.Addresses[i].IsDefault = false
	}
}

func (b *AddressBook) index(id string) int {
	for i, a := range b.Addresses {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func applyPatch(a *Address, p AddressPatch) {
	if p.Type != nil {
		a.Type = *p.Type
	}
	if p.FullName != nil {
		a.FullName = *p.FullName
	}
	if p.Phone != nil {
		a.Phone = *p.Phone
	}
	if p.AddressLine1 != nil {
		a.AddressLine1 = *p.AddressLine1
	}
	if p.AddressLine2 != nil {
		a.AddressLine2 = *p.AddressLine2
	}
	if p.City != nil {
		a.City = *p.City
	}
	if p.State != nil {
		a.State = *p.State
	}
	if p.PostalCode != nil {
		a.PostalCode = *p.PostalCode
	}
	if p.Country != nil {
		a.Country = *p.Country
	}
	if p.Landmark != nil {
		a.Landmark = *p.Landmark
	}
	if p.IsDefault != nil {
		a.IsDefault = *p.IsDefault
	}
}
