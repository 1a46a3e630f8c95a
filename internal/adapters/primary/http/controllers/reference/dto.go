package referenceController

// CloneRequest копирование версии справочника
type CloneRequest struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// RenamePlanetRequest переименование отображаемого имени планеты
type RenamePlanetRequest struct {
	Name string `json:"name"`
}

// SetAspectOrbsRequest правка орбисов аспекта в мутабельной версии
type SetAspectOrbsRequest struct {
	DefaultOrbDeg float64            `json:"default_orb_deg"`
	OrbLuminaries *float64           `json:"orb_luminaries,omitempty"`
	Overrides     map[string]float64 `json:"overrides,omitempty"`
}
