package tui

type Category struct {
	ID          string
	Name        string
	Description string
}

var Categories = []Category{
	{ID: "github", Name: "GitHub", Description: "Endpoints, token and default branch"},
	{ID: "network", Name: "Network", Description: "Timeout, retries and user agent"},
	{ID: "listing", Name: "Listing", Description: "Workers, tree strategy and branch probing"},
	{ID: "archive", Name: "Archive", Description: "Compression level and memory limit"},
	{ID: "cache", Name: "Cache", Description: "Blob cache location and TTL"},
	{ID: "output", Name: "Output", Description: "Output directory and manifest"},
	{ID: "logging", Name: "Logging", Description: "Log level and format"},
}

func GetCategoryByID(id string) *Category {
	for i := range Categories {
		if Categories[i].ID == id {
			return &Categories[i]
		}
	}
	return nil
}

func GetCategoryNames() []string {
	names := make([]string, len(Categories))
	for i, c := range Categories {
		names[i] = c.Name
	}
	return names
}
