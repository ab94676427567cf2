package reports

import (
	"encoding/json"
	"errors"
)

// ErrCatalogUnavailable means the substance catalog could not be loaded or is empty.
var ErrCatalogUnavailable = errors.New("substance catalog unavailable")

// Upload is one image chosen by the user.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// KnownSubstance is a name matched against the catalog.
type KnownSubstance struct {
	Name        string `json:"nombre"`
	Category    string `json:"categoria"`
	Description string `json:"descripcion"`
}

// Report is the JSON body returned by POST /upload.
// Known is always encoded as sustancias_analizadas.
type Report struct {
	FullText string           `json:"texto_completo,omitempty"`
	Known    []KnownSubstance `json:"sustancias_analizadas"`
	Unknown  []string         `json:"sustancias_desconocidas"`
	Summary  string           `json:"resumen_llm,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// UnmarshalJSON accepts the older sustancias_encontradas list when
// sustancias_analizadas is absent.
func (r *Report) UnmarshalJSON(b []byte) error {
	type plain Report
	var aux struct {
		plain
		Legacy []KnownSubstance `json:"sustancias_encontradas"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*r = Report(aux.plain)
	if r.Known == nil && aux.Legacy != nil {
		r.Known = aux.Legacy
	}
	return nil
}

// Normalize replaces nil lists with empty ones so they encode as [].
func (r *Report) Normalize() {
	if r.Known == nil {
		r.Known = []KnownSubstance{}
	}
	if r.Unknown == nil {
		r.Unknown = []string{}
	}
}
