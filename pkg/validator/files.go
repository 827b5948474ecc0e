package validator

import (
	"path/filepath"
	"strings"
)

// ooxmlExtensions are the Office Open XML document, template and add-in formats
var ooxmlExtensions = map[string]bool{
	".docx": true, ".docm": true, ".dotx": true, ".dotm": true,
	".xlsx": true, ".xlsm": true, ".xltx": true, ".xltm": true, ".xlam": true,
	".pptx": true, ".pptm": true, ".potx": true, ".potm": true,
	".ppsx": true, ".ppsm": true, ".ppam": true,
}

// IsOOXMLFile returns true if the path has an Office Open XML extension
func IsOOXMLFile(path string) bool {
	return ooxmlExtensions[strings.ToLower(filepath.Ext(path))]
}
