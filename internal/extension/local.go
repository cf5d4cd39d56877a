package extension

// LocalItem is an installed, non-builtin extension as reported by the local
// inventory.
type LocalItem struct {
	ID          string
	Name        string // display name
	Publisher   string
	Description string
	Version     string
	Dir         string // install directory
}

// Record builds the local-origin record used when no marketplace metadata
// is available: no icon, no download count, installed.
func (i LocalItem) Record() Record {
	return Record{
		ID:          i.ID,
		Name:        i.Name,
		Author:      i.Publisher,
		Description: i.Description,
	}.WithInstalled(true)
}
