package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// EntityKind partitions the extras document.
type EntityKind string

const (
	KindClient    EntityKind = "client"
	KindFormateur EntityKind = "formateur"
	KindSession   EntityKind = "session"
)

// ParseEntityKind accepts the singular or plural spelling used in URLs.
func ParseEntityKind(s string) (EntityKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "client", "clients":
		return KindClient, nil
	case "formateur", "formateurs":
		return KindFormateur, nil
	case "session", "sessions":
		return KindSession, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownEntityKind, s)
}

// ParseEntityID parses a decimal entity id as used for extras keys.
func ParseEntityID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidEntityID, s)
	}
	return id, nil
}

// ExtrasKey is the map key for an entity id.
func ExtrasKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

// ClientExtras holds client fields the remote API does not carry.
type ClientExtras struct {
	NumeroTva        *string `json:"numeroTva,omitempty" bson:"numeroTva,omitempty"`
	Siret            *string `json:"siret,omitempty" bson:"siret,omitempty"`
	EmailFacturation *string `json:"emailFacturation,omitempty" bson:"emailFacturation,omitempty"`
}

// FormateurExtras holds trainer fields the remote API does not carry.
type FormateurExtras struct {
	SousTraitant *bool   `json:"sousTraitant,omitempty" bson:"sousTraitant,omitempty"`
	NumeroTva    *string `json:"numeroTva,omitempty" bson:"numeroTva,omitempty"`
	Siret        *string `json:"siret,omitempty" bson:"siret,omitempty"`
}

// SessionExtras holds training-session fields the remote API does not carry.
// Tariffs are amounts in euros.
type SessionExtras struct {
	Modalite           *string  `json:"modalite,omitempty" bson:"modalite,omitempty"`
	TarifClient        *float64 `json:"tarifClient,omitempty" bson:"tarifClient,omitempty"`
	TarifSousTraitance *float64 `json:"tarifSousTraitance,omitempty" bson:"tarifSousTraitance,omitempty"`
	FraisRefactures    *float64 `json:"fraisRefactures,omitempty" bson:"fraisRefactures,omitempty"`
}

func (e *ClientExtras) Clone() *ClientExtras {
	if e == nil {
		return nil
	}
	return &ClientExtras{
		NumeroTva:        clonePtr(e.NumeroTva),
		Siret:            clonePtr(e.Siret),
		EmailFacturation: clonePtr(e.EmailFacturation),
	}
}

func (e *FormateurExtras) Clone() *FormateurExtras {
	if e == nil {
		return nil
	}
	return &FormateurExtras{
		SousTraitant: clonePtr(e.SousTraitant),
		NumeroTva:    clonePtr(e.NumeroTva),
		Siret:        clonePtr(e.Siret),
	}
}

func (e *SessionExtras) Clone() *SessionExtras {
	if e == nil {
		return nil
	}
	return &SessionExtras{
		Modalite:           clonePtr(e.Modalite),
		TarifClient:        clonePtr(e.TarifClient),
		TarifSousTraitance: clonePtr(e.TarifSousTraitance),
		FraisRefactures:    clonePtr(e.FraisRefactures),
	}
}

// ExtrasDocument is the whole side-car document, persisted as one JSON object.
type ExtrasDocument struct {
	Clients    map[string]*ClientExtras    `json:"clients" bson:"clients"`
	Formateurs map[string]*FormateurExtras `json:"formateurs" bson:"formateurs"`
	Sessions   map[string]*SessionExtras   `json:"sessions" bson:"sessions"`
}

// NewExtrasDocument returns an empty document with all maps allocated.
func NewExtrasDocument() *ExtrasDocument {
	return &ExtrasDocument{
		Clients:    make(map[string]*ClientExtras),
		Formateurs: make(map[string]*FormateurExtras),
		Sessions:   make(map[string]*SessionExtras),
	}
}

// Normalize allocates any map a decoder left nil and drops nil entries.
func (d *ExtrasDocument) Normalize() {
	if d.Clients == nil {
		d.Clients = make(map[string]*ClientExtras)
	}
	if d.Formateurs == nil {
		d.Formateurs = make(map[string]*FormateurExtras)
	}
	if d.Sessions == nil {
		d.Sessions = make(map[string]*SessionExtras)
	}
	dropNil(d.Clients)
	dropNil(d.Formateurs)
	dropNil(d.Sessions)
}

// Clone deep-copies the document so it can be serialized outside the store lock.
func (d *ExtrasDocument) Clone() *ExtrasDocument {
	out := &ExtrasDocument{
		Clients:    make(map[string]*ClientExtras, len(d.Clients)),
		Formateurs: make(map[string]*FormateurExtras, len(d.Formateurs)),
		Sessions:   make(map[string]*SessionExtras, len(d.Sessions)),
	}
	for k, v := range d.Clients {
		out.Clients[k] = v.Clone()
	}
	for k, v := range d.Formateurs {
		out.Formateurs[k] = v.Clone()
	}
	for k, v := range d.Sessions {
		out.Sessions[k] = v.Clone()
	}
	return out
}

// Len counts entries across all kinds.
func (d *ExtrasDocument) Len() int {
	return len(d.Clients) + len(d.Formateurs) + len(d.Sessions)
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func dropNil[T any](m map[string]*T) {
	for k, v := range m {
		if v == nil {
			delete(m, k)
		}
	}
}
