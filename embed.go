package main

import (
	"embed"
	"io/fs"
)

//go:embed all:frontend
var frontendFiles embed.FS

// frontendFS returns the viewer page files rooted at "frontend".
func frontendFS() (fs.FS, error) {
	return fs.Sub(frontendFiles, "frontend")
}
