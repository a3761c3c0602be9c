package config

const (
	// DefaultDatabasePath is the default path for the catalog database
	DefaultDatabasePath = "./bookstock.db"

	// DefaultCategory is assigned to imports that carry no category
	DefaultCategory = "books"

	// Default cover dimensions, matching a 2:3 book aspect ratio
	DefaultImageWidth  = 400
	DefaultImageHeight = 600
)
