// Package web встроенные в бинарник шаблоны и стили страницы конвертера.
package web

import "embed"

//go:embed templates/*.html static/*.css
var FS embed.FS
