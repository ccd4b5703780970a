package source

// RawPeriod is one month in an index data file.
type RawPeriod struct {
	Fecha string     `json:"fecha"`
	Datos []RawEntry `json:"datos"`
}

// RawEntry is one category row within a month.
type RawEntry struct {
	Categoria string   `json:"categoria"`
	Ponderado float64  `json:"ponderado"`
	Mensual   *float64 `json:"mensual"` // null when the month has no published change
}

// DiscoveredFile is a data file found during directory scanning.
type DiscoveredFile struct {
	Path string
	Name string // file name without extension
	Size int64
}
