package uploader

// Regions names the element ids of the host page.
type Regions struct {
	Uploader       string
	Preview        string
	Placeholder    string
	Trigger        string
	Status         string
	Report         string
	FullText       string
	Known          string
	UnknownSection string
	Unknown        string
	Summary        string
}

// DefaultRegions matches the embedded page.
func DefaultRegions() Regions {
	return Regions{
		Uploader:       "uploader",
		Preview:        "imagePreview",
		Placeholder:    "image-placeholder",
		Trigger:        "processButton",
		Status:         "status",
		Report:         "reporte-container",
		FullText:       "result",
		Known:          "sustancias-encontradas",
		UnknownSection: "seccion-desconocidas",
		Unknown:        "sustancias-desconocidas",
		Summary:        "resumen-llm",
	}
}

// reportIDs are the regions Render writes into.
func (r Regions) reportIDs() []string {
	return []string{r.Report, r.FullText, r.Known, r.Summary, r.UnknownSection, r.Unknown}
}
